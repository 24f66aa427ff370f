package docking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// idleShip needs no service beyond undocking
func idleShip(id int, race station.Race, class station.ShipClass) station.Ship {
	return station.Ship{
		FedID:           id,
		Name:            "Ship" + string(rune('A'+id-1)),
		Race:            race,
		Class:           class,
		DefensePower:    100,
		DefenseCapacity: 100,
	}
}

func openBay(id int) station.Bay {
	return station.Bay{
		DockID:             id,
		SupportsHuman:      true,
		SupportsMega:       true,
		CurrentEnvironment: station.EnvironmentOxygen,
		ClassMin:           station.MinShipClass,
		ClassMax:           station.MaxShipClass,
	}
}

type fixture struct {
	catalog  *station.BayCatalog
	registry *station.ShipRegistry
	queue    *station.ServiceQueue
	clock    *shared.MockClock
	recorder *station.EventRecorder
	outcomes *outcomeLog
}

func newFixture(t *testing.T, bays []station.Bay, ships []station.Ship) *fixture {
	t.Helper()

	catalog, err := station.NewBayCatalog(bays)
	require.NoError(t, err)
	registry, err := station.NewShipRegistry(ships)
	require.NoError(t, err)
	queue := station.NewServiceQueue()
	for _, s := range ships {
		require.NoError(t, queue.Enqueue(s.FedID))
	}

	return &fixture{
		catalog:  catalog,
		registry: registry,
		queue:    queue,
		clock:    shared.NewMockClock(epoch),
		recorder: station.NewEventRecorder(),
		outcomes: &outcomeLog{},
	}
}

func (f *fixture) scheduler(cfg Config, extra ...station.EventSink) *Scheduler {
	sink := station.MultiSink(append([]station.EventSink{f.recorder}, extra...))
	return NewScheduler(f.catalog, f.registry, f.queue, sink, f.clock, cfg)
}

func (f *fixture) run(t *testing.T, ctx context.Context, cfg Config, extra ...station.EventSink) error {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- f.scheduler(cfg, extra...).Run(ctx, f.outcomes) }()

	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("scheduler did not finish")
		return nil
	}
}

// kinds returns the event kinds recorded for ship, in order
func (f *fixture) kinds(shipID int) []station.EventKind {
	var out []station.EventKind
	for _, e := range f.recorder.Events() {
		if e.ShipID == shipID {
			out = append(out, e.Kind)
		}
	}
	return out
}

// indexOf returns the position of the first event matching kind and ship
func (f *fixture) indexOf(kind station.EventKind, shipID int) int {
	for i, e := range f.recorder.Events() {
		if e.Kind == kind && e.ShipID == shipID {
			return i
		}
	}
	return -1
}

type outcomeLog struct {
	mu       sync.Mutex
	outcomes []station.ServiceOutcome
}

func (l *outcomeLog) RecordOutcome(o station.ServiceOutcome) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, o)
	return true
}

func (l *outcomeLog) byShip() map[int]station.ServiceOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[int]station.ServiceOutcome, len(l.outcomes))
	for _, o := range l.outcomes {
		out[o.ShipID] = o
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.WaitEventEvery = 1000
	return cfg
}
