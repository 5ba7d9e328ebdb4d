// Package kdag resolves a set of signal mappings (§3) into a validated
// topology: it checks that every depends_on reference resolves, rejects
// cycles by name, and produces a stable topological order so the
// Scheduler can visit nodes dependency-first (§4.3, §4.4).
//
// Adapted from the teacher's own kdag package: the cycle-detection DFS and
// the Kahn's-algorithm topological sort are kept, generalized from a
// Kafka-topic-keyed processing graph to a name-keyed signal graph, and the
// tie-break rule is changed from alphabetical NodeID sort to declaration
// order per spec §4.4 ("input declaration order breaks ties").
package kdag
