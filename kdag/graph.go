package kdag

import (
	"fmt"
	"strings"

	"github.com/canzero/sigdag/mapping"
)

// NodeID is a strongly-typed node identifier; it is the mapping's signal
// name, which also doubles as the broker output path (§3).
type NodeID string

func (id NodeID) Validate() error {
	if id == "" {
		return fmt.Errorf("%w: node ID cannot be empty", ErrInvalidNodeID)
	}
	if strings.ContainsAny(string(id), " \t\n\r") {
		return fmt.Errorf("%w: node ID %q cannot contain whitespace", ErrInvalidNodeID, id)
	}
	return nil
}

// Node is the build-time representation of one signal mapping inside the
// graph: the mapping itself plus its resolved edges.
type Node struct {
	ID      NodeID
	Mapping mapping.Mapping

	// DeclOrder is this node's position in the original mapping list;
	// it is the tie-break for topological ordering (§4.4).
	DeclOrder int

	// Parents are the nodes this node depends on (depends_on, resolved).
	Parents []NodeID
	// Children are the nodes that depend on this node.
	Children []NodeID
}

// Graph is the resolved, build-time DAG. Nodes never move once built; the
// Scheduler addresses them by NodeID against the precomputed topo order
// (spec §9 design note on arena-style storage — here the arena is the
// Nodes map plus the immutable Order slice).
type Graph struct {
	Nodes map[NodeID]*Node
	Order []NodeID // declaration order, not topological order
}

func newGraph() *Graph {
	return &Graph{Nodes: make(map[NodeID]*Node)}
}

// RequiredInputs returns the distinct external input names every leaf node
// in the graph is bound to, exposed to the InputSource per §4.3/§6.
func (g *Graph) RequiredInputs() []mapping.Source {
	seen := make(map[mapping.Source]bool)
	var out []mapping.Source
	for _, id := range g.Order {
		n := g.Nodes[id]
		if n.Mapping.Source == nil {
			continue
		}
		src := *n.Mapping.Source
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

// RequiredInputsFor returns the distinct external input names the given
// node transitively depends on, per §4.3.
func (g *Graph) RequiredInputsFor(id NodeID) []mapping.Source {
	seen := make(map[mapping.Source]bool)
	visited := make(map[NodeID]bool)
	var out []mapping.Source

	var walk func(NodeID)
	walk = func(cur NodeID) {
		if visited[cur] {
			return
		}
		visited[cur] = true
		n := g.Nodes[cur]
		if n.Mapping.Source != nil {
			src := *n.Mapping.Source
			if !seen[src] {
				seen[src] = true
				out = append(out, src)
			}
			return
		}
		for _, p := range n.Parents {
			walk(p)
		}
	}
	walk(id)
	return out
}
