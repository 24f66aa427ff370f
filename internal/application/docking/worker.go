package docking

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// ServiceWorker runs the service stages of one docked ship in order. Workers
// never touch the bay catalog; the bay goes back through the notifier.
type ServiceWorker struct {
	registry *station.ShipRegistry
	clock    shared.Clock
	policy   station.ServicePolicy
	cycle    time.Duration
	events   publisher
}

// NewServiceWorker creates a worker. cycle is the wall-clock length of one cycle.
func NewServiceWorker(
	registry *station.ShipRegistry,
	clock shared.Clock,
	sink station.EventSink,
	policy station.ServicePolicy,
	cycle time.Duration,
) *ServiceWorker {
	return &ServiceWorker{
		registry: registry,
		clock:    clock,
		policy:   policy,
		cycle:    cycle,
		events:   publisher{sink: sink, clock: clock},
	}
}

// RunService services ship at dockID. A stage that cannot be timed is logged
// and skipped; only cancellation stops the sequence early.
func (w *ServiceWorker) RunService(ctx context.Context, seq int, ship station.Ship, dockID int) station.ServiceOutcome {
	for _, stage := range station.ServiceStages {
		cycles, active, err := w.policy.StageCycles(stage, &ship)
		if err != nil {
			w.events.stage(ctx, station.EventStageFailed, seq, &ship, dockID, stage, 0, err)
			continue
		}
		if !active {
			w.events.stage(ctx, station.EventStageSkipped, seq, &ship, dockID, stage, 0, nil)
			continue
		}

		w.events.stage(ctx, station.EventStageStarted, seq, &ship, dockID, stage, cycles, nil)
		if err := sleepCycles(ctx, w.clock, w.cycle, cycles); err != nil {
			return station.NewFailedOutcome(seq, &ship, dockID,
				station.AtStage(stage, fmt.Errorf("%s interrupted: %w", stage, err)), w.clock.Now())
		}

		apply := w.stageEffect(stage)
		apply(&ship)
		if err := w.registry.Update(ship.FedID, apply); err != nil {
			return station.NewFailedOutcome(seq, &ship, dockID, station.AtStage(stage, err), w.clock.Now())
		}
		w.events.stage(ctx, station.EventStageCompleted, seq, &ship, dockID, stage, cycles, nil)
	}

	return station.ServiceOutcome{
		Sequence:    seq,
		ShipID:      ship.FedID,
		ShipName:    ship.Name,
		DockID:      dockID,
		Status:      station.OutcomeSuccess,
		CompletedAt: w.clock.Now(),
	}
}

// stageEffect returns the ship mutation a finished stage leaves behind
func (w *ServiceWorker) stageEffect(stage station.Stage) func(*station.Ship) {
	switch stage {
	case station.StageRefuel:
		return func(s *station.Ship) { s.FuelOnBoard = s.FuelCapacity }
	case station.StageCargoUnload:
		return func(s *station.Ship) { s.CargoToUnload = 0 }
	case station.StageCargoLoad:
		return func(s *station.Ship) { s.CargoToLoad = 0 }
	case station.StageWasteCleanup:
		return func(s *station.Ship) { s.WasteOnBoard = 0 }
	case station.StageRepair:
		return func(s *station.Ship) { s.RepairCode = 0 }
	case station.StageDefenseRecharge:
		return func(s *station.Ship) { s.DefensePower = w.policy.DefenseTargetFor(s) }
	case station.StageFoodResupply:
		return func(s *station.Ship) { s.FoodCode = 0 }
	default:
		return func(*station.Ship) {}
	}
}

func sleepCycles(ctx context.Context, clock shared.Clock, cycle time.Duration, cycles int) error {
	if cycles <= 0 {
		return ctx.Err()
	}
	return clock.Sleep(ctx, time.Duration(cycles)*cycle)
}
