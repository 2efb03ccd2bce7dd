// Package checkpoint takes hashed snapshots of the run state at
// configured tick cadences and restores them on demand.
//
// Snapshots are serialized to canonical JSON (encoding/json emits map
// keys in sorted order), so the content hash is a pure deterministic
// function of the snapshot and stable across processes. To bound
// memory, only every FullEvery-th record stores the complete snapshot;
// the records in between store structural deltas, and restore replays
// deltas forward from the nearest full record, verifying the hash at
// every step.
package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Checkpoint is a reconstructed snapshot handed back to callers.
type Checkpoint struct {
	Tick     uint64
	Snapshot map[string]any
	Hash     string
}

// CorruptionError reports a persisted record that can no longer be
// trusted: its payload fails to hash to the sealed content hash, or it
// does not even decode. Restores failing with this error are refused
// outright; there is no best-effort recovery path — callers fall back
// to an earlier checkpoint or a full rebuild.
type CorruptionError struct {
	Tick     uint64
	Expected string
	Actual   string

	// Err carries the decode failure when the payload itself is
	// unparseable; Expected/Actual are the hash pair otherwise.
	Err error
}

func (e *CorruptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("checkpoint at tick %d is corrupt: %v", e.Tick, e.Err)
	}
	return fmt.Sprintf("checkpoint at tick %d is corrupt: hash %s, expected %s", e.Tick, e.Actual, e.Expected)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// canonicalize serializes a snapshot to its canonical byte form.
func canonicalize(snapshot map[string]any) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return payload, nil
}

// HashSnapshot computes the stable content hash of a snapshot: SHA-256
// over its canonical JSON, hex encoded.
func HashSnapshot(snapshot map[string]any) (string, error) {
	payload, err := canonicalize(snapshot)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
