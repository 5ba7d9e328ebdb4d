// Package ports declares the boundary the core is built against: the
// InputSource it pulls updates from and the Sink it publishes emissions
// to (§6). Both are interfaces so the core stays free of CAN/DBC and
// broker transport concerns; concrete implementations live outside the
// core (cansource/, sinks/).
package ports

import (
	"context"
	"time"

	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/value"
)

// Update is one external input observation (§6's {name, value, timestamp}).
type Update struct {
	Source mapping.Source
	Value  value.Value
	TS     time.Time
}

// InputSource is the acquisition boundary. RequiredInputs is called once,
// after topology resolution, so the source only has to deliver updates
// for names the graph actually consumes (§4.3, §6).
type InputSource interface {
	Initialize(ctx context.Context) error

	RequiredInputs(inputs []mapping.Source)

	// Poll is non-blocking and may return an empty batch; ordering within
	// the batch is the source's natural order, duplicates permitted —
	// the Scheduler applies last-wins within a tick (§6).
	Poll() ([]Update, error)

	Stop() error
}

// Handle is an opaque, pre-resolved token identifying an output path in
// the broker tree (GLOSSARY "Sink handle").
type Handle interface{}

// Emission is one coerced output the Output Assembler hands to the Sink
// (§4.6's {path, qualified_value}).
type Emission struct {
	Path  string
	Value value.Value
}

// Sink is the publication boundary. Resolve is attempted once per output
// node at startup; a missing path is logged by the caller and the node's
// emissions are dropped, not retried, per §6/§7.
type Sink interface {
	Resolve(path string) (Handle, error)

	Publish(handle Handle, v value.Value) error
}

// ErrPathNotFound is returned by Resolve when the broker tree has no
// such path (§6, §7 "Resolution" error kind).
var ErrPathNotFound = pathNotFoundError{}

type pathNotFoundError struct{}

func (pathNotFoundError) Error() string { return "ports: path not found" }
