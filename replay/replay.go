// Package replay records the batches an InputSource hands the driver
// loop and can play them back later in the same order, for deterministic
// reprocessing of a past run. It never touches node state (§1's
// "does not persist state across restarts" still holds — only raw input
// batches are persisted, never last_value/dirty/last_emit_ts).
package replay

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/ports"
)

// Recorder decorates an InputSource, persisting every non-empty batch Poll
// returns to a pebble database before handing it back to the caller
// unchanged; empty batches are not recorded.
// Adapted from the teacher's stores/pebble backend (pebble.Open, Set,
// Get), repurposed from a key/value processor store to an append-only
// input-batch log.
type Recorder struct {
	inner ports.InputSource
	db    *pebble.DB
	seq   uint64
}

// NewRecorder opens (or creates) a pebble database at dir and wraps inner.
func NewRecorder(inner ports.InputSource, dir string) (*Recorder, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", dir, err)
	}
	return &Recorder{inner: inner, db: db}, nil
}

func (r *Recorder) Initialize(ctx context.Context) error { return r.inner.Initialize(ctx) }

func (r *Recorder) RequiredInputs(inputs []mapping.Source) { r.inner.RequiredInputs(inputs) }

func (r *Recorder) Poll() ([]ports.Update, error) {
	updates, err := r.inner.Poll()
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return updates, nil
	}

	payload, err := json.Marshal(updates)
	if err != nil {
		return updates, fmt.Errorf("replay: marshal batch: %w", err)
	}

	key := seqKey(r.seq)
	r.seq++
	if err := r.db.Set(key, payload, pebble.NoSync); err != nil {
		return updates, fmt.Errorf("replay: persist batch: %w", err)
	}
	return updates, nil
}

func (r *Recorder) Stop() error {
	err := r.inner.Stop()
	if cerr := r.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
