// Package memsink provides an in-memory ports.Sink, useful for local
// runs and tests.
package memsink

import (
	"sync"

	"github.com/canzero/sigdag/ports"
	"github.com/canzero/sigdag/value"
)

// Sink records every published value per path. All paths resolve; it is
// not meant to model the Sink contract's "missing path" behavior, only
// to give the driver loop something real to publish into.
type Sink struct {
	mu     sync.Mutex
	values map[string]value.Value
	log    []ports.Emission
}

func New() *Sink {
	return &Sink{values: make(map[string]value.Value)}
}

func (s *Sink) Resolve(path string) (ports.Handle, error) {
	return path, nil
}

func (s *Sink) Publish(handle ports.Handle, v value.Value) error {
	path := handle.(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[path] = v
	s.log = append(s.log, ports.Emission{Path: path, Value: v})
	return nil
}

// Get returns the most recently published value for path.
func (s *Sink) Get(path string) (value.Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[path]
	return v, ok
}

// Log returns every emission published so far, in publish order.
func (s *Sink) Log() []ports.Emission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.Emission, len(s.log))
	copy(out, s.log)
	return out
}
