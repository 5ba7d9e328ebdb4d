// Package cansource is a fixture-driven stand-in for the real CAN-bus
// acquisition and DBC decoding collaborator the core deliberately leaves
// out of scope (§1): it implements ports.InputSource by replaying a
// recorded sequence of signal updates on a wall-clock schedule, enough to
// drive the process entrypoint and local demos without a real vehicle bus.
package cansource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/ports"
	"github.com/canzero/sigdag/value"
)

// fixtureRecord is the on-disk shape of one scripted update.
type fixtureRecord struct {
	OffsetMS int64       `json:"offset_ms"`
	Type     string      `json:"type"`
	Name     string      `json:"name"`
	Value    interface{} `json:"value"`
}

// FixtureSource replays a JSON fixture of {offset_ms, type, name, value}
// records relative to the moment Initialize is called.
type FixtureSource struct {
	records []fixtureRecord
	next    int
	start   time.Time
}

// Open reads and sorts a fixture file by offset_ms.
func Open(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cansource: read %s: %w", path, err)
	}
	var records []fixtureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("cansource: parse %s: %w", path, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].OffsetMS < records[j].OffsetMS })
	return &FixtureSource{records: records}, nil
}

func (s *FixtureSource) Initialize(ctx context.Context) error {
	s.start = time.Now()
	return nil
}

// RequiredInputs is accepted but unused: a fixture plays back everything
// it was recorded with regardless of what the graph actually consumes.
func (s *FixtureSource) RequiredInputs(inputs []mapping.Source) {}

func (s *FixtureSource) Poll() ([]ports.Update, error) {
	elapsed := time.Since(s.start).Milliseconds()
	var out []ports.Update
	for s.next < len(s.records) && s.records[s.next].OffsetMS <= elapsed {
		r := s.records[s.next]
		v, err := toValue(r.Value)
		if err != nil {
			return out, fmt.Errorf("cansource: record %d: %w", s.next, err)
		}
		out = append(out, ports.Update{
			Source: mapping.Source{Type: r.Type, Name: r.Name},
			Value:  v,
			TS:     s.start.Add(time.Duration(r.OffsetMS) * time.Millisecond),
		})
		s.next++
	}
	return out, nil
}

func (s *FixtureSource) Stop() error { return nil }

// toValue infers a value.Value from a decoded JSON scalar. Fixtures are
// meant for demos and tests, not production decoding, so the inference
// is intentionally coarse: float64 for numbers, matching JSON's own
// numeric type.
func toValue(raw interface{}) (value.Value, error) {
	switch v := raw.(type) {
	case bool:
		return value.BoolValue(v), nil
	case float64:
		return value.DoubleValue(v), nil
	case string:
		return value.StringValue(v), nil
	default:
		return value.Invalid(), fmt.Errorf("unsupported fixture value %T", raw)
	}
}
