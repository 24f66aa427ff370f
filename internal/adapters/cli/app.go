package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/spacestation-go/internal/adapters/console"
	"github.com/andrescamacho/spacestation-go/internal/adapters/metrics"
	"github.com/andrescamacho/spacestation-go/internal/adapters/persistence"
	"github.com/andrescamacho/spacestation-go/internal/adapters/report"
	"github.com/andrescamacho/spacestation-go/internal/adapters/roster"
	"github.com/andrescamacho/spacestation-go/internal/application/docking"
	"github.com/andrescamacho/spacestation-go/internal/application/mediator"
	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
	"github.com/andrescamacho/spacestation-go/internal/infrastructure/config"
	"github.com/andrescamacho/spacestation-go/internal/infrastructure/database"
	"github.com/andrescamacho/spacestation-go/internal/infrastructure/logging"
)

// app is the wired application behind one CLI invocation
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	mediator mediator.Mediator
	closers  []func()
}

// appOptions selects the optional parts of the wiring
type appOptions struct {
	// store opens the run history database
	store bool
	fs    afero.Fs
}

// loadConfig reads the config file and applies overrides before validating
func loadConfig(opts *rootOptions, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return cfg, nil
}

// newApp builds the logger, storage, sinks and mediator from cfg
func newApp(cfg *config.Config, verbose bool, opts appOptions) (*app, error) {
	logger, closeLogger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	if verbose {
		logging.SetLevel(zapcore.DebugLevel)
	}

	a := &app{cfg: cfg, logger: logger, closers: []func(){closeLogger}}
	if opts.fs == nil {
		opts.fs = afero.NewOsFs()
	}

	if err := a.wire(opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(opts appOptions) error {
	cfg := a.cfg
	clock := shared.NewRealClock()

	loader := roster.NewFileLoader(opts.fs, roster.Paths{
		Ships: cfg.Roster.ShipsPath,
		Bays:  cfg.Roster.BaysPath,
		Order: cfg.Roster.OrderPath,
	})

	sinks := []station.EventSink{console.NewSink(a.logger)}
	var finalizers []docking.RunFinalizer

	m := mediator.NewMediator()
	m.Use(mediator.LoggingMiddleware(a.logger))

	if cfg.Metrics.Enabled {
		collector, err := metrics.NewStationMetricsCollector(cfg.Station.Name, cfg.Metrics.TextfilePath, a.logger)
		if err != nil {
			return err
		}
		commands := metrics.NewCommandMetricsCollector()
		if err := commands.Register(collector.Registry()); err != nil {
			return err
		}
		m.Use(metrics.PrometheusMiddleware(commands))
		sinks = append(sinks, collector)
		finalizers = append(finalizers, collector)
	}

	if cfg.Reports.Enabled {
		writer, err := report.NewWriter(opts.fs, cfg.Reports.Dir, a.logger)
		if err != nil {
			return err
		}
		sinks = append(sinks, writer)
		finalizers = append(finalizers, writer)
	}

	var (
		runs   station.RunRepository
		events station.EventRepository
	)
	if opts.store {
		db, err := database.NewConnection(&cfg.Database, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = database.Close(db) })
		if err := database.Migrate(db, a.logger); err != nil {
			return err
		}

		runRepo := persistence.NewGormStationRunRepository(db)
		eventRepo := persistence.NewGormServiceEventRepository(db)
		runs, events = runRepo, eventRepo

		if err := mediator.RegisterHandler[*docking.ListRunsQuery](m, docking.NewListRunsHandler(runRepo)); err != nil {
			return err
		}
		if err := mediator.RegisterHandler[*docking.GetRunEventsQuery](m, docking.NewGetRunEventsHandler(runRepo, eventRepo)); err != nil {
			return err
		}
	}

	runHandler := docking.NewRunStationHandler(loader, runs, events, sinks, finalizers, clock, a.logger)
	if err := mediator.RegisterHandler[*docking.RunStationCommand](m, runHandler); err != nil {
		return err
	}
	if err := mediator.RegisterHandler[*docking.CheckRosterQuery](m, docking.NewCheckRosterHandler(loader)); err != nil {
		return err
	}

	a.mediator = m
	return nil
}

// schedulerConfig maps the station section onto the dispatch loop config
func (a *app) schedulerConfig() docking.Config {
	cfg := docking.DefaultConfig()
	cfg.Mode = station.RunMode(a.cfg.Station.Mode)
	cfg.FailFast = a.cfg.Station.FailFastEnabled()
	cfg.CycleDuration = a.cfg.Station.CycleDuration
	cfg.Policy.RetryCycles = a.cfg.Station.RetryCycles
	cfg.WaitEventEvery = a.cfg.Station.WaitEventEvery
	return cfg
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
