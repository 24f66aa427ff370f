package docking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// Config tunes the dispatch loop
type Config struct {
	Mode station.RunMode
	// FailFast rejects ships no bay could ever host instead of waiting forever
	FailFast      bool
	CycleDuration time.Duration
	Policy        station.ServicePolicy
	// WaitEventEvery emits one bay_waiting event per this many failed acquisitions
	WaitEventEvery int
}

// DefaultConfig returns a batch, fail-fast configuration with one-second cycles
func DefaultConfig() Config {
	return Config{
		Mode:           station.RunModeBatch,
		FailFast:       true,
		CycleDuration:  time.Second,
		Policy:         station.DefaultServicePolicy(),
		WaitEventEvery: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.CycleDuration <= 0 {
		c.CycleDuration = d.CycleDuration
	}
	if c.Policy == (station.ServicePolicy{}) {
		c.Policy = d.Policy
	}
	if c.WaitEventEvery <= 0 {
		c.WaitEventEvery = d.WaitEventEvery
	}
	return c
}

// OutcomeRecorder receives the terminal outcome of every dispatched ship
type OutcomeRecorder interface {
	RecordOutcome(o station.ServiceOutcome) bool
}

// Scheduler is the dispatch loop. It pulls ships off the queue in FIFO
// order, holds a bay for each, drives preparation and docking, then hands
// the ship to a concurrent ServiceWorker and moves on without waiting.
//
// The loop is the only caller of BayCatalog.Acquire; releases come back
// through a completion channel drained by a single notifier goroutine.
type Scheduler struct {
	catalog  *station.BayCatalog
	registry *station.ShipRegistry
	queue    *station.ServiceQueue
	clock    shared.Clock
	cfg      Config
	worker   *ServiceWorker
	notifier *CompletionNotifier
	events   publisher
}

// NewScheduler wires a dispatch loop over shared station state
func NewScheduler(
	catalog *station.BayCatalog,
	registry *station.ShipRegistry,
	queue *station.ServiceQueue,
	sink station.EventSink,
	clock shared.Clock,
	cfg Config,
) *Scheduler {
	if sink == nil {
		sink = station.NopSink{}
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	cfg = cfg.withDefaults()

	return &Scheduler{
		catalog:  catalog,
		registry: registry,
		queue:    queue,
		clock:    clock,
		cfg:      cfg,
		worker:   NewServiceWorker(registry, clock, sink, cfg.Policy, cfg.CycleDuration),
		notifier: NewCompletionNotifier(catalog, registry, sink, clock),
		events:   publisher{sink: sink, clock: clock},
	}
}

// Notifier exposes the completion path
func (s *Scheduler) Notifier() *CompletionNotifier {
	return s.notifier
}

// Run dispatches until the queue is drained (batch) or closed and drained
// (continuous), then waits for every in-flight worker. Cancelling ctx stops
// dispatch; running workers stop at their next stage and their bays are
// still released. Outcomes go to recorder when it is non-nil.
func (s *Scheduler) Run(ctx context.Context, recorder OutcomeRecorder) error {
	if recorder == nil {
		recorder = discardOutcomes{}
	}

	completions := make(chan Completion)
	notifierDone := make(chan error, 1)
	go s.drainCompletions(ctx, completions, recorder, notifierDone)

	var workers conc.WaitGroup
	loopErr := s.dispatchLoop(ctx, &workers, completions, recorder)

	var panicErr error
	if recovered := workers.WaitAndRecover(); recovered != nil {
		panicErr = fmt.Errorf("service worker panicked: %v", recovered.Value)
	}
	close(completions)
	notifyErr := <-notifierDone

	// workers interrupted after the queue drained still make this a cancelled run
	if loopErr == nil {
		loopErr = ctx.Err()
	}

	return errors.Join(loopErr, panicErr, notifyErr)
}

func (s *Scheduler) dispatchLoop(ctx context.Context, workers *conc.WaitGroup, completions chan<- Completion, recorder OutcomeRecorder) error {
	seq := 0
	for {
		fedID, err := s.next(ctx)
		if errors.Is(err, station.ErrQueueClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		seq++
		if err := s.dispatch(ctx, seq, fedID, workers, completions, recorder); err != nil {
			return err
		}
	}
}

// next returns the next queued ship. In batch mode an empty queue ends the run.
func (s *Scheduler) next(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.cfg.Mode == station.RunModeContinuous {
		return s.queue.Dequeue(ctx)
	}
	if id, ok := s.queue.TryDequeue(); ok {
		return id, nil
	}
	return 0, station.ErrQueueClosed
}

// dispatch takes one ship from Idle to Dispatched. Per-ship failures are
// recorded and swallowed; only cancellation is returned.
func (s *Scheduler) dispatch(
	ctx context.Context,
	seq, fedID int,
	workers *conc.WaitGroup,
	completions chan<- Completion,
	recorder OutcomeRecorder,
) error {
	ship, ok := s.registry.Get(fedID)
	if !ok {
		missing := station.Ship{FedID: fedID}
		err := station.AtStage(station.StageAllocation, shared.NewShipNotFoundError(fedID))
		s.events.failure(ctx, seq, &missing, 0, err)
		recorder.RecordOutcome(station.NewFailedOutcome(seq, &missing, 0, err, s.clock.Now()))
		return nil
	}
	s.events.ship(ctx, station.EventDequeued, seq, &ship, 0,
		"ship %s (federation id %d, class %d) dequeued", ship.Name, ship.FedID, int(ship.Class))

	fail := func(dockID int, err error) {
		recorder.RecordOutcome(station.NewFailedOutcome(seq, &ship, dockID, err, s.clock.Now()))
	}

	required, err := s.admit(&ship)
	if err != nil {
		err = station.AtStage(station.StageAllocation, err)
		s.events.failure(ctx, seq, &ship, 0, err)
		fail(0, err)
		return nil
	}

	sel, err := s.acquire(ctx, seq, &ship)
	if err != nil {
		err = station.AtStage(station.StageAllocation, err)
		s.events.failure(ctx, seq, &ship, 0, err)
		fail(0, err)
		if shared.TagOf(err) == shared.ErrorTagCancelled {
			return err
		}
		return nil
	}
	dockID := sel.Bay.DockID
	s.notifier.track(fedID, seq)

	if err := s.prepareAndDock(ctx, seq, &ship, sel, required); err != nil {
		if abortErr := s.notifier.abort(context.WithoutCancel(ctx), seq, &ship, dockID, err); abortErr != nil {
			return errors.Join(err, abortErr)
		}
		fail(dockID, err)
		if shared.TagOf(err) == shared.ErrorTagCancelled {
			return err
		}
		return nil
	}

	ship, _ = s.registry.Get(fedID)
	workers.Go(func() {
		outcome := station.NewFailedOutcome(seq, &ship, dockID, errors.New("service worker panicked"), s.clock.Now())
		defer func() {
			completions <- Completion{DockID: dockID, ShipID: ship.FedID, Outcome: outcome}
		}()
		outcome = s.worker.RunService(ctx, seq, ship, dockID)
	})
	return nil
}

// admit validates the ship and, in fail-fast mode, rejects ships that no
// bay could ever host
func (s *Scheduler) admit(ship *station.Ship) (station.Environment, error) {
	required, err := ship.RequiredEnvironment()
	if err != nil {
		return "", err
	}
	if err := ship.Validate(); err != nil {
		return "", err
	}
	if s.cfg.FailFast {
		ok, err := s.catalog.CanEverHost(ship)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", shared.NewNoCompatibleBayError(ship.FedID, ship.Name)
		}
	}
	return required, nil
}

// acquire polls the catalog until a bay is reserved for ship. Waiting is
// reported through a throttled bay_waiting event.
func (s *Scheduler) acquire(ctx context.Context, seq int, ship *station.Ship) (station.Selection, error) {
	waiting := rate.Sometimes{First: 1, Every: s.cfg.WaitEventEvery}
	attempts := 0

	for {
		sel, err := s.catalog.Acquire(ship)
		if err != nil {
			return station.Selection{}, err
		}
		if sel.Found() {
			how := "exact match"
			if sel.NeedsConversion {
				how = "environment conversion required"
			}
			s.events.ship(ctx, station.EventBaySelected, seq, ship, sel.Bay.DockID,
				"bay %d selected (%s)", sel.Bay.DockID, how)
			return sel, nil
		}

		attempts++
		waiting.Do(func() {
			s.events.ship(ctx, station.EventBayWaiting, seq, ship, 0,
				"no bay available, retrying in %d cycles (attempt %d)", s.cfg.Policy.RetryCycles, attempts)
		})
		if err := sleepCycles(ctx, s.clock, s.cfg.CycleDuration, s.cfg.Policy.RetryCycles); err != nil {
			return station.Selection{}, fmt.Errorf("waiting for bay: %w", err)
		}
	}
}

// prepareAndDock covers PreparingBay and Docking for a reserved bay. Errors
// name the phase they stopped in.
func (s *Scheduler) prepareAndDock(ctx context.Context, seq int, ship *station.Ship, sel station.Selection, required station.Environment) error {
	dockID := sel.Bay.DockID
	prepStage := station.StagePreparingBay
	if sel.NeedsConversion {
		prepStage = station.StageConvertingBay
	}
	if err := s.prepareBay(ctx, seq, ship, sel, required); err != nil {
		return station.AtStage(prepStage, err)
	}
	return station.AtStage(station.StageDocking, s.dock(ctx, seq, ship, dockID))
}

func (s *Scheduler) prepareBay(ctx context.Context, seq int, ship *station.Ship, sel station.Selection, required station.Environment) error {
	dockID := sel.Bay.DockID
	policy := s.cfg.Policy

	if sel.NeedsConversion {
		s.events.ship(ctx, station.EventBayConverting, seq, ship, dockID,
			"converting bay %d from %s to %s", dockID, sel.Bay.CurrentEnvironment, required)
		if err := sleepCycles(ctx, s.clock, s.cfg.CycleDuration, policy.ConvertCycles); err != nil {
			return fmt.Errorf("converting bay %d: %w", dockID, err)
		}
	} else {
		s.events.ship(ctx, station.EventBayPreparing, seq, ship, dockID, "preparing bay %d", dockID)
		if err := sleepCycles(ctx, s.clock, s.cfg.CycleDuration, policy.PrepareCycles); err != nil {
			return fmt.Errorf("preparing bay %d: %w", dockID, err)
		}
	}

	if _, err := s.catalog.Prepare(dockID, ship.FedID, required); err != nil {
		return err
	}
	if err := sleepCycles(ctx, s.clock, s.cfg.CycleDuration, policy.ReadyCycles); err != nil {
		return fmt.Errorf("readying bay %d: %w", dockID, err)
	}
	s.events.ship(ctx, station.EventBayReady, seq, ship, dockID, "bay %d ready (%s)", dockID, required)
	return nil
}

func (s *Scheduler) dock(ctx context.Context, seq int, ship *station.Ship, dockID int) error {
	cycles, err := station.DockingCycles(ship.Class)
	if err != nil {
		return err
	}
	s.events.ship(ctx, station.EventDocking, seq, ship, dockID, "docking at bay %d, %d cycles", dockID, cycles)
	if err := sleepCycles(ctx, s.clock, s.cfg.CycleDuration, cycles); err != nil {
		return fmt.Errorf("docking at bay %d: %w", dockID, err)
	}

	if err := s.registry.MarkDocked(ship.FedID, dockID); err != nil {
		return err
	}
	s.events.ship(ctx, station.EventDocked, seq, ship, dockID, "docked at bay %d", dockID)
	return nil
}

// drainCompletions is the single consumer of worker completions
func (s *Scheduler) drainCompletions(ctx context.Context, completions <-chan Completion, recorder OutcomeRecorder, done chan<- error) {
	// releases must go through even after cancellation
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for c := range completions {
		if _, err := s.notifier.Notify(ctx, c); err != nil {
			errs = append(errs, err)
		}
		recorder.RecordOutcome(c.Outcome)
	}
	done <- errors.Join(errs...)
}

type discardOutcomes struct{}

func (discardOutcomes) RecordOutcome(station.ServiceOutcome) bool { return true }
