package sigdag

import (
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/canzero/sigdag/kdag"
	"github.com/canzero/sigdag/ports"
	"github.com/canzero/sigdag/scheduler"
)

// App is the single-threaded cooperative driver of §5: it owns an
// InputSource, a Sink, and a Processor, and runs the poll/process/publish
// loop until asked to stop. It is adapted from the teacher's own App
// (app.go/config.go) with the worker-pool/Kafka-consumer-group machinery
// replaced by the one cooperative loop §5 calls for.
type App struct {
	dag    *kdag.DAG
	proc   *scheduler.Processor
	source ports.InputSource
	sink   ports.Sink

	log logr.Logger

	pollInterval time.Duration
	tickInterval time.Duration

	handles map[string]ports.Handle

	running atomic.Bool
}

// New builds a driver for the given topology, InputSource and Sink. It
// resolves a Sink handle for every output node up front (§6): a missing
// path is logged and that node's emissions are dropped for the lifetime
// of the App, never retried.
func New(dag *kdag.DAG, source ports.InputSource, sink ports.Sink, opts ...Option) (*App, error) {
	a := &App{
		dag:          dag,
		source:       source,
		sink:         sink,
		log:          logr.Discard(),
		pollInterval: 10 * time.Millisecond,
		tickInterval: 50 * time.Millisecond,
		handles:      make(map[string]ports.Handle),
	}
	for _, opt := range opts {
		opt(a)
	}

	proc, err := scheduler.New(dag, a.log)
	if err != nil {
		return nil, err
	}
	a.proc = proc

	for _, id := range dag.Order() {
		path := string(id)
		handle, err := sink.Resolve(path)
		if err != nil {
			a.log.Info("output path not resolved, dropping emissions for node", "node", path, "error", err.Error())
			continue
		}
		a.handles[path] = handle
	}

	return a, nil
}

// MustNew panics instead of returning an error; convenient for the
// process entrypoint where every error at this stage is fatal anyway
// (§7 "Configuration" errors terminate the process).
func MustNew(dag *kdag.DAG, source ports.InputSource, sink ports.Sink, opts ...Option) *App {
	app, err := New(dag, source, sink, opts...)
	if err != nil {
		panic(err)
	}
	return app
}

// Processor exposes the underlying Scheduler for diagnostics and tests.
func (a *App) Processor() *scheduler.Processor { return a.proc }

// Stop clears the run flag; the loop drains one more tick and returns
// (§5 "Cancellation"). Idempotent, safe to call from another goroutine
// such as a signal handler.
func (a *App) Stop() {
	a.running.Store(false)
}
