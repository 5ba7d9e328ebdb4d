package sigdag

import (
	"context"
	"time"

	"github.com/canzero/sigdag/ports"
)

// Run implements the cooperative loop of §5: initialize the source,
// declare required inputs, then poll/process/publish until Stop is
// called or ctx is cancelled. Processing one tick is atomic with respect
// to observers of node state; the only suspension points are Poll,
// Publish, and the sleep between ticks.
func (a *App) Run(ctx context.Context) error {
	if err := a.source.Initialize(ctx); err != nil {
		return err
	}
	required := a.dag.Graph().RequiredInputs()
	a.source.RequiredInputs(required)
	a.log.Info("monitoring required input signals", "count", len(required), "inputs", required)

	a.running.Store(true)

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	lastTick := time.Now()

	for a.running.Load() {
		select {
		case <-ctx.Done():
			a.running.Store(false)
		case <-ticker.C:
		}

		updates, err := a.source.Poll()
		if err != nil {
			a.log.Info("input source poll failed", "error", err.Error())
			continue
		}

		now := time.Now()
		forceTick := now.Sub(lastTick) >= a.tickInterval
		if len(updates) == 0 && !forceTick {
			continue
		}
		if forceTick {
			lastTick = now
		}

		emissions := a.proc.Process(updates, now)
		a.publish(emissions)
	}

	return a.source.Stop()
}

// publish hands each emission to the Sink, skipping nodes whose output
// path never resolved at startup. Publish errors are logged, never fatal
// (§7 "Publish failure").
func (a *App) publish(emissions []ports.Emission) {
	for _, em := range emissions {
		handle, ok := a.handles[em.Path]
		if !ok {
			continue
		}
		if err := a.sink.Publish(handle, em.Value); err != nil {
			a.log.Info("publish failed", "path", em.Path, "error", err.Error())
		}
	}
}
