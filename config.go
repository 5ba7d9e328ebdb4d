package sigdag

import (
	"time"

	"github.com/go-logr/logr"
)

// Option configures an App, the same functional-options shape the
// teacher repo uses for its own App.
type Option func(*App)

// WithLogger sets the logr.Logger the App and its Scheduler log through.
// Defaults to logr.Discard().
var WithLogger = func(log logr.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithPollInterval sets the fine-grained sleep between InputSource polls
// (§5, default 10ms).
var WithPollInterval = func(d time.Duration) Option {
	return func(a *App) {
		a.pollInterval = d
	}
}

// WithTickInterval sets the coarser cadence at which the driver forces a
// tick even without new input, so periodic nodes fire during input
// silence (§5, default 50ms).
var WithTickInterval = func(d time.Duration) Option {
	return func(a *App) {
		a.tickInterval = d
	}
}
