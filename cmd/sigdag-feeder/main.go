// Command sigdag-feeder is the process entrypoint of §6: four positional
// arguments, exit code 0 on graceful stop and 1 on initialization
// failure, SIGINT/SIGTERM trigger a graceful drain. Adapted from the
// teacher's own examples/store/main.go: the same pkg/log zerolog
// construction and signal-goroutine-calls-Close shape, generalized from a
// single Ctrl-C handler into an errgroup so the signal watcher and the
// driver loop share one cancellation path. Shutdown errors from the
// driver and from draining the sink are combined with multierr.Combine,
// the same aggregation the teacher's own task manager uses when closing
// multiple collaborators at once (internal/task_manager.go).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/zerologr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/canzero/sigdag"
	"github.com/canzero/sigdag/cansource"
	"github.com/canzero/sigdag/config"
	"github.com/canzero/sigdag/kdag"
	pkglog "github.com/canzero/sigdag/pkg/log"
	"github.com/canzero/sigdag/sinks/kafkasink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 5 {
		return fmt.Errorf("usage: sigdag-feeder <dbc_file> <mapping_file> <can_interface> <broker_address>")
	}
	dbcFile := os.Args[1]
	mappingFile := os.Args[2]
	canInterface := os.Args[3]
	brokerAddress := os.Args[4]

	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	log := zerologr.New(pkglog.New())

	log.Info("starting", "dbc_file", dbcFile, "mapping_file", mappingFile, "can_interface", canInterface, "broker_address", brokerAddress)

	mappings, err := config.LoadMappingFile(mappingFile)
	if err != nil {
		return fmt.Errorf("load mapping file: %w", err)
	}
	dag, err := kdag.Build(mappings)
	if err != nil {
		return fmt.Errorf("build topology: %w", err)
	}

	// Real CAN frame acquisition and DBC decoding are out of scope for
	// the core (§1); can_interface here names a recorded fixture file
	// the stand-in source replays on a wall-clock schedule.
	source, err := cansource.Open(canInterface)
	if err != nil {
		return fmt.Errorf("open input source: %w", err)
	}

	sink, err := kafkasink.New([]string{brokerAddress}, "vehicle-signals")
	if err != nil {
		return fmt.Errorf("connect sink: %w", err)
	}
	defer sink.Close()

	app, err := sigdag.New(dag, source, sink, sigdag.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case <-c:
			log.Info("received signal, stopping")
			app.Stop()
		case <-egCtx.Done():
		}
		return nil
	})
	eg.Go(func() error {
		return app.Run(egCtx)
	})

	runErr := eg.Wait()
	flushErr := sink.Flush(context.Background())
	if err := multierr.Combine(runErr, flushErr); err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}
