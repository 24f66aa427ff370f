package docking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/andrescamacho/spacestation-go/internal/application/mediator"
	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
	"github.com/andrescamacho/spacestation-go/pkg/utils"
)

// RunStationCommand runs the station once over the configured rosters
type RunStationCommand struct {
	StationName string
	Scheduler   Config
	// Arrivals feeds extra ships in continuous mode; the queue closes when
	// the channel is closed. Ignored in batch mode.
	Arrivals <-chan station.Ship
}

// RunStationResponse carries the finished run
type RunStationResponse struct {
	Run      *station.StationRun
	Summary  station.RunSummary
	Problems []station.RosterProblem
}

// RunStationHandler loads rosters, runs the dispatch loop and persists the result
type RunStationHandler struct {
	roster     RosterSource
	runs       station.RunRepository
	events     station.EventRepository
	sinks      []station.EventSink
	finalizers []RunFinalizer
	clock      shared.Clock
	logger     *zap.Logger
}

// NewRunStationHandler creates the handler. runs and events may be nil when
// persistence is disabled.
func NewRunStationHandler(
	roster RosterSource,
	runs station.RunRepository,
	events station.EventRepository,
	sinks []station.EventSink,
	finalizers []RunFinalizer,
	clock shared.Clock,
	logger *zap.Logger,
) *RunStationHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunStationHandler{
		roster:     roster,
		runs:       runs,
		events:     events,
		sinks:      sinks,
		finalizers: finalizers,
		clock:      clock,
		logger:     logger,
	}
}

func (h *RunStationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RunStationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunStationCommand, got %T", request)
	}

	bays, ships, err := loadRosters(ctx, h.roster)
	if err != nil {
		return nil, err
	}
	catalog, err := station.NewBayCatalog(bays)
	if err != nil {
		return nil, fmt.Errorf("bay roster: %w", err)
	}
	registry, err := station.NewShipRegistry(ships)
	if err != nil {
		return nil, fmt.Errorf("ship roster: %w", err)
	}

	order, err := h.roster.LoadOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	queue, err := buildQueue(registry, order)
	if err != nil {
		return nil, err
	}

	problems := station.CheckRoster(bays, ships)
	for _, p := range problems {
		h.logger.Warn("roster problem", zap.Int("ship_id", p.ShipID), zap.String("tag", string(p.Tag)), zap.String("reason", p.Reason))
	}

	cfg := cmd.Scheduler.withDefaults()
	run := station.NewStationRun(utils.GenerateRunID(cmd.StationName), cmd.StationName, cfg.Mode, queue.Len(), h.clock)

	sink := station.MultiSink(append([]station.EventSink{}, h.sinks...))
	if h.events != nil {
		sink = append(sink, &repositorySink{repo: h.events, runID: run.ID(), logger: h.logger})
	}
	events := publisher{sink: sink, clock: h.clock}

	if err := h.save(ctx, run); err != nil {
		return nil, err
	}
	if err := run.Start(); err != nil {
		return nil, err
	}
	events.run(ctx, station.EventRunStarted, "station %s run %s started: %d bays, %d ships queued",
		cmd.StationName, run.ID(), catalog.Len(), queue.Len())

	if cfg.Mode == station.RunModeContinuous {
		go feedArrivals(ctx, cmd.Arrivals, run, registry, queue, h.logger)
	}

	scheduler := NewScheduler(catalog, registry, queue, sink, h.clock, cfg)
	runErr := scheduler.Run(ctx, run)

	if err := run.Finish(runErr); err != nil {
		h.logger.Error("finish run", zap.String("run_id", run.ID()), zap.Error(err))
	}
	summary := run.Summary()
	finishCtx := context.WithoutCancel(ctx)
	events.run(finishCtx, station.EventRunFinished, "run %s %s: %d serviced, %d failed, %d cancelled",
		run.ID(), summary.Status, summary.Serviced, summary.Failed, summary.Cancelled)

	if err := h.save(finishCtx, run); err != nil {
		return nil, err
	}
	var finErrs []error
	for _, f := range h.finalizers {
		if err := f.FinishRun(finishCtx, summary); err != nil {
			finErrs = append(finErrs, err)
		}
	}
	if err := errors.Join(finErrs...); err != nil {
		h.logger.Error("run finalizers", zap.Error(err))
	}

	return &RunStationResponse{Run: run, Summary: summary, Problems: problems}, nil
}

func (h *RunStationHandler) save(ctx context.Context, run *station.StationRun) error {
	if h.runs == nil {
		return nil
	}
	if err := h.runs.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID(), err)
	}
	return nil
}

func loadRosters(ctx context.Context, roster RosterSource) ([]station.Bay, []station.Ship, error) {
	bays, err := roster.LoadBays(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load bays: %w", err)
	}
	ships, err := roster.LoadShips(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load ships: %w", err)
	}
	return bays, ships, nil
}

// buildQueue enqueues the ships named in order first, then every other ship
// in roster order
func buildQueue(registry *station.ShipRegistry, order []int) (*station.ServiceQueue, error) {
	queue := station.NewServiceQueue()
	seen := make(map[int]bool, len(order))

	for _, id := range order {
		if _, ok := registry.Get(id); !ok {
			return nil, fmt.Errorf("order file: %w", shared.NewShipNotFoundError(id))
		}
		if err := queue.Enqueue(id); err != nil {
			return nil, fmt.Errorf("order file: %w", err)
		}
		seen[id] = true
	}
	for _, ship := range registry.All() {
		if seen[ship.FedID] {
			continue
		}
		if err := queue.Enqueue(ship.FedID); err != nil {
			return nil, err
		}
	}
	return queue, nil
}

// feedArrivals registers and queues ships as they arrive, closing the queue
// when the producer is done or the run is cancelled
func feedArrivals(ctx context.Context, arrivals <-chan station.Ship, run *station.StationRun, registry *station.ShipRegistry, queue *station.ServiceQueue, logger *zap.Logger) {
	defer queue.Close()
	if arrivals == nil {
		<-ctx.Done()
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ship, ok := <-arrivals:
			if !ok {
				return
			}
			if err := registry.Add(ship); err != nil {
				logger.Warn("arrival rejected", zap.Int("ship_id", ship.FedID), zap.Error(err))
				continue
			}
			if err := queue.Enqueue(ship.FedID); err != nil {
				logger.Warn("arrival not queued", zap.Int("ship_id", ship.FedID), zap.Error(err))
				continue
			}
			run.ShipArrived()
		}
	}
}

// repositorySink persists every event under one run id. Storage errors are
// logged and never reach the dispatch loop.
type repositorySink struct {
	repo   station.EventRepository
	runID  string
	logger *zap.Logger
}

func (s *repositorySink) Publish(ctx context.Context, event station.ServiceEvent) {
	if err := s.repo.AppendEvent(context.WithoutCancel(ctx), s.runID, event); err != nil {
		s.logger.Error("persist event", zap.String("run_id", s.runID), zap.String("kind", string(event.Kind)), zap.Error(err))
	}
}
