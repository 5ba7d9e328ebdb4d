// Package state holds the mutable per-node state the Scheduler owns
// exclusively (§4, §9 "Node state mutation"): last value, last-emission
// timestamp, dirty flag, and last-evaluation timestamp. No other package
// may mutate a Store; read access is exposed for tests and diagnostics.
package state

import (
	"time"

	"github.com/canzero/sigdag/kdag"
	"github.com/canzero/sigdag/value"
)

// NodeState is one node's mutable record (§3 "Node State").
type NodeState struct {
	LastValue value.Value

	// LastEmitTS is nil until the node's first emission.
	LastEmitTS *time.Time

	Dirty bool

	LastEvalTS time.Time
}

// Store is an arena of NodeState, index-addressed by kdag.NodeID the way
// §9's "Topology + arena" design note asks: nodes never move once built.
type Store struct {
	states map[kdag.NodeID]*NodeState
}

// NewStore builds a Store with one zero NodeState (unspecified, invalid
// last_value, per §3) per supplied node ID.
func NewStore(ids []kdag.NodeID) *Store {
	s := &Store{states: make(map[kdag.NodeID]*NodeState, len(ids))}
	for _, id := range ids {
		s.states[id] = &NodeState{LastValue: value.Invalid()}
	}
	return s
}

// Get returns the mutable state for id. It panics if id was not part of
// the node set the Store was built from — that is a programming error in
// the Scheduler, never a runtime condition.
func (s *Store) Get(id kdag.NodeID) *NodeState {
	st, ok := s.states[id]
	if !ok {
		panic("state: unknown node " + string(id))
	}
	return st
}

// Snapshot returns a read-only copy of every node's current LastValue,
// keyed by NodeID, for diagnostics and tests. It does not copy timing or
// dirty fields since those are Scheduler-internal bookkeeping.
func (s *Store) Snapshot() map[kdag.NodeID]value.Value {
	out := make(map[kdag.NodeID]value.Value, len(s.states))
	for id, st := range s.states {
		out[id] = st.LastValue
	}
	return out
}
