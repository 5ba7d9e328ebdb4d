package kdag

import (
	"errors"
	"fmt"

	"github.com/canzero/sigdag/mapping"
)

// Sentinel errors for configuration-time failures (§7: all of these are
// fatal at initialization, never recovered at runtime).
var (
	ErrNodeAlreadyExists = errors.New("kdag: node already exists")
	ErrNodeNotFound      = errors.New("kdag: node not found")
	ErrCycleDetected     = errors.New("kdag: cycle detected in DAG")
	ErrInvalidNodeID     = errors.New("kdag: invalid node ID")
	ErrInvalidTopology   = errors.New("kdag: invalid topology")
)

// DAG is a fully built, validated topology: an immutable Graph plus its
// precomputed topological order.
type DAG struct {
	graph *Graph
	order []NodeID
}

// Graph exposes the underlying graph for read access (required-input
// computation, node lookups).
func (d *DAG) Graph() *Graph { return d.graph }

// Order returns the stable topological order nodes must be visited in.
func (d *DAG) Order() []NodeID { return d.order }

// Node looks up a node by name.
func (d *DAG) Node(id NodeID) (*Node, bool) {
	n, ok := d.graph.Nodes[id]
	return n, ok
}

// Build resolves a declaration-ordered list of mappings into a validated
// DAG. It validates each mapping individually (mapping.Validate), wires
// depends_on edges, rejects dangling references and cycles, and computes
// the stable topological order.
func Build(mappings []mapping.Mapping) (*DAG, error) {
	g := newGraph()

	for i, m := range mappings {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		id := NodeID(m.Name)
		if err := id.Validate(); err != nil {
			return nil, err
		}
		if _, exists := g.Nodes[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrNodeAlreadyExists, m.Name)
		}
		g.Nodes[id] = &Node{ID: id, Mapping: m, DeclOrder: i}
		g.Order = append(g.Order, id)
	}

	for _, id := range g.Order {
		n := g.Nodes[id]
		for _, depName := range n.Mapping.DependsOn {
			depID := NodeID(depName)
			dep, ok := g.Nodes[depID]
			if !ok {
				return nil, fmt.Errorf("%w: %s depends_on undeclared node %q", ErrInvalidTopology, id, depName)
			}
			n.Parents = append(n.Parents, depID)
			dep.Children = append(dep.Children, id)
		}
	}

	if err := detectCycles(g); err != nil {
		return nil, err
	}

	order, err := topologicalSort(g)
	if err != nil {
		return nil, err
	}

	return &DAG{graph: g, order: order}, nil
}
