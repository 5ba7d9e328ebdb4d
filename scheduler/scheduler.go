// Package scheduler implements the per-tick activation/evaluation/
// emission algorithm of §4.4 plus the output coercion of §4.6. It is the
// sole owner of the node state store (§5, §9): no other package mutates
// a state.Store once a Processor exists.
package scheduler

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/canzero/sigdag/eval"
	"github.com/canzero/sigdag/kdag"
	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/ports"
	"github.com/canzero/sigdag/state"
	"github.com/canzero/sigdag/value"
)

// Processor evaluates one DAG tick at a time. It is not safe for
// concurrent use; the driver loop (§5) is expected to call Process
// sequentially from a single goroutine.
type Processor struct {
	dag      *kdag.DAG
	store    *state.Store
	log      logr.Logger
	compiled map[kdag.NodeID]eval.Node
}

// New parses every code-transform expression once (§9 "parse once at
// initialization"), builds a fresh state.Store, and returns a ready
// Processor. It fails only if an expression does not parse — a
// configuration error per §7.
func New(dag *kdag.DAG, log logr.Logger) (*Processor, error) {
	p := &Processor{
		dag:      dag,
		store:    state.NewStore(dag.Order()),
		log:      log,
		compiled: make(map[kdag.NodeID]eval.Node),
	}

	for _, id := range dag.Order() {
		n, _ := dag.Node(id)
		if n.Mapping.IsStruct {
			continue
		}
		if n.Mapping.Transform.Kind != mapping.Code {
			continue
		}
		ast, err := eval.Parse(n.Mapping.Transform.Code)
		if err != nil {
			return nil, err
		}
		p.compiled[id] = ast
	}
	return p, nil
}

// Store exposes the underlying state store for diagnostics and tests.
func (p *Processor) Store() *state.Store { return p.store }

// Process runs one tick: a possibly-empty update batch plus a monotonic
// now. It returns the emission list in topological order (§4.4, §4.6).
func (p *Processor) Process(updates []ports.Update, now time.Time) []ports.Emission {
	latest := latestBySource(updates)
	activated := make(map[kdag.NodeID]bool, len(p.dag.Order()))

	var emissions []ports.Emission

	for _, id := range p.dag.Order() {
		n, _ := p.dag.Node(id)
		st := p.store.Get(id)

		fired := p.activate(n, st, latest, activated, now)
		if fired {
			activated[id] = true
		}

		if em, ok := p.decideEmission(n, st, now); ok {
			emissions = append(emissions, em)
		}
	}
	return emissions
}

// latestBySource collapses the batch to one value per source, keeping
// the last update in batch order, per §6 "duplicates permitted, last
// wins in the tick".
func latestBySource(updates []ports.Update) map[mapping.Source]ports.Update {
	out := make(map[mapping.Source]ports.Update, len(updates))
	for _, u := range updates {
		out[u.Source] = u
	}
	return out
}

// activate implements §4.4 step 1 and 2: decide whether N fires this
// tick, and if so, compute its new value. It returns whether N was
// activated (used by dependents to decide their own on-dependency
// activation).
func (p *Processor) activate(n *kdag.Node, st *state.NodeState, latest map[mapping.Source]ports.Update, activated map[kdag.NodeID]bool, now time.Time) bool {
	if n.Mapping.IsLeaf() {
		u, ok := latest[*n.Mapping.Source]
		if !ok {
			return false
		}
		st.LastValue = u.Value
		st.Dirty = true
		st.LastEvalTS = now
		return true
	}

	trigger := n.Mapping.UpdateTrigger
	depActivated := false
	for _, parent := range n.Parents {
		if activated[parent] {
			depActivated = true
			break
		}
	}

	dueByDependency := depActivated && (trigger == mapping.OnDependency || trigger == mapping.Both)
	dueByInterval := (trigger == mapping.Periodic || trigger == mapping.Both) &&
		now.Sub(st.LastEvalTS) >= time.Duration(n.Mapping.IntervalMS)*time.Millisecond

	if !dueByDependency && !dueByInterval {
		return false
	}

	v, err := p.evaluate(n)
	if err != nil {
		p.log.V(1).Info("evaluation fault", "node", n.ID, "error", err.Error())
		st.LastValue = value.Invalid()
	} else {
		st.LastValue = v
	}
	st.Dirty = true
	st.LastEvalTS = now
	return true
}

// decideEmission implements §4.4 step 3 and the coercion leg of §4.6.
func (p *Processor) decideEmission(n *kdag.Node, st *state.NodeState, now time.Time) (ports.Emission, bool) {
	if !st.Dirty || !st.LastValue.Valid {
		return ports.Emission{}, false
	}
	if st.LastEmitTS != nil && n.Mapping.IntervalMS > 0 {
		if now.Sub(*st.LastEmitTS) < time.Duration(n.Mapping.IntervalMS)*time.Millisecond {
			return ports.Emission{}, false
		}
	}

	out, err := value.CoerceTo(st.LastValue, n.Mapping.DataType)
	if err != nil {
		p.log.V(1).Info("emission coercion fault", "node", n.ID, "error", err.Error())
		return ports.Emission{}, false
	}

	st.Dirty = false
	ts := now
	st.LastEmitTS = &ts

	return ports.Emission{Path: string(n.ID), Value: out}, true
}
