package replay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/ports"
)

// Player implements ports.InputSource by replaying batches a Recorder
// previously persisted, in the same sequence order, one batch per Poll.
// Required for deterministic reprocessing of a past run (an
// original_source/ feature the distilled interface spec never named).
type Player struct {
	db   *pebble.DB
	iter *pebble.Iterator
}

// NewPlayer opens dir read-only and positions an iterator at the first
// recorded batch.
func NewPlayer(dir string) (*Player, error) {
	db, err := pebble.Open(dir, &pebble.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", dir, err)
	}
	iter := db.NewIter(nil)
	iter.First()
	return &Player{db: db, iter: iter}, nil
}

func (p *Player) Initialize(ctx context.Context) error { return nil }

func (p *Player) RequiredInputs(inputs []mapping.Source) {}

// Poll returns the next recorded batch, or an empty batch once every
// recorded batch has been replayed.
func (p *Player) Poll() ([]ports.Update, error) {
	if !p.iter.Valid() {
		return nil, nil
	}
	var updates []ports.Update
	if err := json.Unmarshal(p.iter.Value(), &updates); err != nil {
		return nil, fmt.Errorf("replay: unmarshal batch: %w", err)
	}
	p.iter.Next()
	return updates, nil
}

func (p *Player) Stop() error {
	if err := p.iter.Close(); err != nil {
		p.db.Close()
		return err
	}
	return p.db.Close()
}
