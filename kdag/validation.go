package kdag

import (
	"fmt"
	"sort"
)

// detectCycles walks the graph depth-first from every node in declaration
// order and fails with the offending path the first time it revisits a node
// still on the current stack. Adapted from the teacher's own cycle check,
// generalized from Kafka topic/processor nodes to signal nodes.
func detectCycles(g *Graph) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[NodeID]int, len(g.Nodes))
	var path []NodeID

	var visit func(NodeID) error
	visit = func(id NodeID) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			path = append(path, id)
			return fmt.Errorf("%w: %s", ErrCycleDetected, cyclePath(path, id))
		}
		state[id] = visiting
		path = append(path, id)

		n := g.Nodes[id]
		for _, child := range n.Children {
			if err := visit(child); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		state[id] = done
		return nil
	}

	for _, id := range g.Order {
		if state[id] == unvisited {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// cyclePath renders the stack slice from the first occurrence of target
// onward, e.g. "A -> B -> C -> A".
func cyclePath(path []NodeID, target NodeID) string {
	start := 0
	for i, id := range path {
		if id == target {
			start = i
			break
		}
	}
	s := string(path[start])
	for _, id := range path[start+1:] {
		s += " -> " + string(id)
	}
	return s
}

// topologicalSort produces a stable dependency-first order using Kahn's
// algorithm: nodes with zero remaining in-degree (no unresolved parents)
// are released in ascending declaration-order, the same tie-break rule
// §4.4 specifies for per-tick evaluation order. The teacher's original
// version released ties alphabetically by NodeID; here it is declaration
// order instead.
func topologicalSort(g *Graph) ([]NodeID, error) {
	indegree := make(map[NodeID]int, len(g.Nodes))
	for _, id := range g.Order {
		indegree[id] = len(g.Nodes[id].Parents)
	}

	ready := make([]NodeID, 0, len(g.Nodes))
	for _, id := range g.Order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	byDeclOrder := func(ids []NodeID) {
		sort.SliceStable(ids, func(i, j int) bool {
			return g.Nodes[ids[i]].DeclOrder < g.Nodes[ids[j]].DeclOrder
		})
	}
	byDeclOrder(ready)

	var order []NodeID
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var freed []NodeID
		for _, child := range g.Nodes[id].Children {
			indegree[child]--
			if indegree[child] == 0 {
				freed = append(freed, child)
			}
		}
		byDeclOrder(freed)
		ready = append(ready, freed...)
		byDeclOrder(ready)
	}

	if len(order) != len(g.Nodes) {
		return nil, fmt.Errorf("%w: topological sort resolved %d of %d nodes, remaining nodes form a cycle", ErrCycleDetected, len(order), len(g.Nodes))
	}
	return order, nil
}
