package checkpoint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/gridvm/internal/delta"
	"github.com/specialistvlad/gridvm/internal/snapstore"
	"github.com/specialistvlad/gridvm/internal/state"
)

// Options tune how the manager persists and retains checkpoints.
type Options struct {
	// Retention bounds how many records are kept; the oldest is
	// evicted first once exceeded. Zero means keep everything.
	Retention int

	// FullEvery forces a full snapshot every N-th record; records in
	// between store deltas. Values below 1 mean every record is full.
	FullEvery int
}

// Manager persists snapshots through a snapstore.Store and
// reconstructs them on restore.
//
// The manager is owned by one VM instance; checkpointing and execution
// never run concurrently for the same VM, so no locking is needed
// beyond what the store provides.
type Manager struct {
	store snapstore.Store
	opts  Options

	lastSnapshot  map[string]any
	sinceLastFull int
	hasRecords    bool
}

// NewManager creates a manager over the given store.
func NewManager(store snapstore.Store, opts Options) *Manager {
	if opts.FullEvery < 1 {
		opts.FullEvery = 1
	}
	return &Manager{store: store, opts: opts}
}

// Take persists a checkpoint of the snapshot at the given tick and
// returns it. The snapshot is not retained by reference; callers keep
// ownership of their argument.
func (m *Manager) Take(ctx context.Context, tick uint64, snapshot map[string]any) (*Checkpoint, error) {
	canonical, err := canonicalize(snapshot)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(canonical)
	hash := hex.EncodeToString(sum[:])

	rec := snapstore.Record{
		Version:     snapstore.LayoutVersion,
		Tick:        tick,
		ContentHash: hash,
	}

	if !m.hasRecords || m.sinceLastFull >= m.opts.FullEvery-1 {
		rec.Kind = snapstore.KindFull
		rec.Payload = canonical
		m.sinceLastFull = 0
	} else {
		d := delta.Compute(m.lastSnapshot, snapshot)
		payload, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize delta: %w", err)
		}
		rec.Kind = snapstore.KindDelta
		rec.Payload = payload
		m.sinceLastFull++
	}

	if err := m.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist checkpoint at tick %d: %w", tick, err)
	}

	m.lastSnapshot = cloneSnapshot(snapshot)
	m.hasRecords = true

	if err := m.prune(ctx); err != nil {
		return nil, err
	}

	return &Checkpoint{Tick: tick, Snapshot: cloneSnapshot(snapshot), Hash: hash}, nil
}

// Restore reconstructs the full snapshot for a given tick by replaying
// stored deltas forward from the nearest full record. Any hash
// mismatch along the chain refuses the restore with *CorruptionError.
func (m *Manager) Restore(ctx context.Context, tick uint64) (*Checkpoint, error) {
	ticks, err := m.store.Ticks(ctx)
	if err != nil {
		return nil, err
	}

	target := -1
	for i, t := range ticks {
		if t == tick {
			target = i
			break
		}
	}
	if target == -1 {
		return nil, fmt.Errorf("no checkpoint stored for tick %d", tick)
	}

	// Walk back to the nearest full record.
	records := make([]snapstore.Record, 0, target+1)
	base := -1
	for i := target; i >= 0; i-- {
		rec, ok, err := m.store.Get(ctx, ticks[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("checkpoint record for tick %d vanished", ticks[i])
		}
		records = append([]snapstore.Record{rec}, records...)
		if rec.Kind == snapstore.KindFull {
			base = i
			break
		}
	}
	if base == -1 {
		return nil, fmt.Errorf("no full snapshot precedes tick %d; chain is broken", tick)
	}

	var snapshot map[string]any
	for i, rec := range records {
		if i == 0 {
			// Full payloads are canonical at write time, so the raw
			// bytes must hash to the sealed content hash before any
			// decoding is attempted. A structure-breaking byte flip is
			// caught here, not as a decode error.
			sum := sha256.Sum256(rec.Payload)
			if actual := hex.EncodeToString(sum[:]); actual != rec.ContentHash {
				return nil, &CorruptionError{Tick: rec.Tick, Expected: rec.ContentHash, Actual: actual}
			}
			if err := json.Unmarshal(rec.Payload, &snapshot); err != nil {
				return nil, &CorruptionError{Tick: rec.Tick, Expected: rec.ContentHash, Err: fmt.Errorf("undecodable snapshot payload: %w", err)}
			}
		} else {
			var d delta.Delta
			if err := json.Unmarshal(rec.Payload, &d); err != nil {
				return nil, &CorruptionError{Tick: rec.Tick, Expected: rec.ContentHash, Err: fmt.Errorf("undecodable delta payload: %w", err)}
			}
			snapshot = delta.Apply(snapshot, &d)
		}

		actual, err := HashSnapshot(snapshot)
		if err != nil {
			return nil, err
		}
		if actual != rec.ContentHash {
			return nil, &CorruptionError{Tick: rec.Tick, Expected: rec.ContentHash, Actual: actual}
		}
	}

	hash := records[len(records)-1].ContentHash
	return &Checkpoint{Tick: tick, Snapshot: snapshot, Hash: hash}, nil
}

// Ticks returns the ticks of all retained checkpoints, ascending.
func (m *Manager) Ticks(ctx context.Context) ([]uint64, error) {
	return m.store.Ticks(ctx)
}

// prune evicts the oldest records beyond the retention bound. When the
// record that would become oldest is a delta, it is first rewritten as
// a full snapshot so the remaining chain stays restorable.
func (m *Manager) prune(ctx context.Context) error {
	if m.opts.Retention <= 0 {
		return nil
	}

	for {
		ticks, err := m.store.Ticks(ctx)
		if err != nil {
			return err
		}
		if len(ticks) <= m.opts.Retention {
			return nil
		}

		if len(ticks) > 1 {
			next, ok, err := m.store.Get(ctx, ticks[1])
			if err != nil {
				return err
			}
			if ok && next.Kind == snapstore.KindDelta {
				restored, err := m.Restore(ctx, next.Tick)
				if err != nil {
					return fmt.Errorf("failed to materialize checkpoint at tick %d before pruning: %w", next.Tick, err)
				}
				payload, err := canonicalize(restored.Snapshot)
				if err != nil {
					return err
				}
				next.Kind = snapstore.KindFull
				next.Payload = payload
				if err := m.store.Put(ctx, next); err != nil {
					return err
				}
			}
		}

		if err := m.store.Delete(ctx, ticks[0]); err != nil {
			return err
		}
	}
}

func cloneSnapshot(snapshot map[string]any) map[string]any {
	out := make(map[string]any, len(snapshot))
	for k, v := range snapshot {
		out[k] = state.CloneValue(v)
	}
	return out
}
