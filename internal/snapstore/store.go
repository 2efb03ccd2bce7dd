// Package snapstore defines the storage contract for persisted
// checkpoint records and the versioned on-disk layout shared by all
// implementations.
//
// The record layout is part of the external interface: tamper-evidence
// tooling (e.g. a Merkle-ledger collaborator) seals the content hashes,
// so the hash must stay a pure deterministic function of the snapshot
// bytes across implementations and releases.
package snapstore

import "context"

// LayoutVersion identifies the persisted record layout. Bump it only
// with a migration path for existing stores.
const LayoutVersion = 1

// Kind distinguishes full snapshots from delta records.
type Kind string

const (
	// KindFull means Payload is the canonical JSON of the complete
	// state snapshot at Tick.
	KindFull Kind = "full"

	// KindDelta means Payload is the JSON of a structural delta from
	// the previous retained record.
	KindDelta Kind = "delta"
)

// Record is one persisted checkpoint.
//
// ContentHash is always the SHA-256 (hex) of the canonical JSON of the
// full snapshot at Tick — for delta records too, which is what lets a
// restore verify the reconstructed snapshot at every step of the chain.
type Record struct {
	Version     int
	Tick        uint64
	Kind        Kind
	Payload     []byte
	ContentHash string
}

// Store persists checkpoint records keyed by tick.
//
// Implementations must be safe for concurrent use; checkpointing and
// execution never interleave for one VM, but external audit tooling
// may read while a run is in flight.
type Store interface {
	// Put inserts or replaces the record for its tick.
	Put(ctx context.Context, rec Record) error

	// Get returns the record for a tick, reporting whether it exists.
	Get(ctx context.Context, tick uint64) (Record, bool, error)

	// Ticks returns all stored ticks in ascending order.
	Ticks(ctx context.Context) ([]uint64, error)

	// Delete removes the record for a tick if present.
	Delete(ctx context.Context, tick uint64) error
}
