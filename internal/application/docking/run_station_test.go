package docking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/application/mediator"
	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

type fakeRoster struct {
	bays  []station.Bay
	ships []station.Ship
	order []int
	err   error
}

func (r *fakeRoster) LoadBays(context.Context) ([]station.Bay, error)   { return r.bays, r.err }
func (r *fakeRoster) LoadShips(context.Context) ([]station.Ship, error) { return r.ships, r.err }
func (r *fakeRoster) LoadOrder(context.Context) ([]int, error)          { return r.order, nil }

type memoryStore struct {
	mu     sync.Mutex
	runs   map[string]*station.StationRun
	saves  int
	events map[string][]station.ServiceEvent
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: map[string]*station.StationRun{}, events: map[string][]station.ServiceEvent{}}
}

func (m *memoryStore) SaveRun(_ context.Context, run *station.StationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID()] = run
	m.saves++
	return nil
}

func (m *memoryStore) FindRun(_ context.Context, id string) (*station.StationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, errors.New("run not found")
	}
	return run, nil
}

func (m *memoryStore) ListRuns(_ context.Context, limit int) ([]*station.StationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*station.StationRun
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) AppendEvent(_ context.Context, runID string, e station.ServiceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[runID] = append(m.events[runID], e)
	return nil
}

func (m *memoryStore) FindEvents(_ context.Context, runID string, shipID, _ int) ([]station.ServiceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []station.ServiceEvent
	for _, e := range m.events[runID] {
		if shipID == 0 || e.ShipID == shipID {
			out = append(out, e)
		}
	}
	return out, nil
}

type summaryCapture struct {
	got []station.RunSummary
}

func (c *summaryCapture) FinishRun(_ context.Context, s station.RunSummary) error {
	c.got = append(c.got, s)
	return nil
}

func newMediator(t *testing.T, roster RosterSource, store *memoryStore, finalizer RunFinalizer) mediator.Mediator {
	t.Helper()

	m := mediator.NewMediator()
	clock := shared.NewMockClock(epoch)
	require.NoError(t, mediator.RegisterHandler[*RunStationCommand](m,
		NewRunStationHandler(roster, store, store, nil, []RunFinalizer{finalizer}, clock, nil)))
	require.NoError(t, mediator.RegisterHandler[*CheckRosterQuery](m, NewCheckRosterHandler(roster)))
	require.NoError(t, mediator.RegisterHandler[*ListRunsQuery](m, NewListRunsHandler(store)))
	require.NoError(t, mediator.RegisterHandler[*GetRunEventsQuery](m, NewGetRunEventsHandler(store, store)))
	return m
}

func TestRunStation_BatchRunPersistsEverything(t *testing.T) {
	roster := &fakeRoster{
		bays: []station.Bay{openBay(1)},
		ships: []station.Ship{
			idleShip(1, station.RaceHuman, station.ClassPersonal),
			idleShip(2, station.RaceAmphibian, station.ClassPersonal),
			idleShip(3, station.RaceMega, station.ClassSkeeter),
		},
		order: []int{3},
	}
	store := newMemoryStore()
	capture := &summaryCapture{}
	m := newMediator(t, roster, store, capture)

	resp, err := m.Send(context.Background(), &RunStationCommand{StationName: "Deep Space Nine"})
	require.NoError(t, err)
	result := resp.(*RunStationResponse)

	assert.Equal(t, shared.LifecycleStatusCompleted, result.Summary.Status)
	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 2, result.Summary.Serviced)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Regexp(t, `^deep-space-nine-[0-9a-f]{8}$`, result.Run.ID())

	require.Len(t, result.Problems, 1)
	assert.Equal(t, 2, result.Problems[0].ShipID)
	assert.Equal(t, shared.ErrorTagNoCompatibleBay, result.Problems[0].Tag)

	outcomes := result.Run.Outcomes()
	require.Len(t, outcomes, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{outcomes[0].ShipID, outcomes[1].ShipID, outcomes[2].ShipID},
		"order file ships first, then roster order")

	assert.Equal(t, 2, store.saves, "saved when created and when finished")
	require.Len(t, capture.got, 1)
	assert.Equal(t, result.Summary, capture.got[0])

	events := store.events[result.Run.ID()]
	require.NotEmpty(t, events)
	assert.Equal(t, station.EventRunStarted, events[0].Kind)
	assert.Equal(t, station.EventRunFinished, events[len(events)-1].Kind)

	listed, err := m.Send(context.Background(), &ListRunsQuery{})
	require.NoError(t, err)
	assert.Len(t, listed.(*ListRunsResponse).Runs, 1)

	shipEvents, err := m.Send(context.Background(), &GetRunEventsQuery{RunID: result.Run.ID(), ShipID: 3})
	require.NoError(t, err)
	got := shipEvents.(*GetRunEventsResponse)
	require.Len(t, got.Outcomes, 1)
	assert.Equal(t, 3, got.Outcomes[0].ShipID)
	for _, e := range got.Events {
		assert.Equal(t, 3, e.ShipID)
	}
}

func TestRunStation_UnknownIDInOrderFile(t *testing.T) {
	roster := &fakeRoster{
		bays:  []station.Bay{openBay(1)},
		ships: []station.Ship{idleShip(1, station.RaceHuman, station.ClassPersonal)},
		order: []int{7},
	}
	m := newMediator(t, roster, newMemoryStore(), &summaryCapture{})

	_, err := m.Send(context.Background(), &RunStationCommand{StationName: "x"})

	var notFound *shared.ShipNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRunStation_RosterErrorsSurface(t *testing.T) {
	m := newMediator(t, &fakeRoster{err: errors.New("disk on fire")}, newMemoryStore(), &summaryCapture{})

	_, err := m.Send(context.Background(), &RunStationCommand{StationName: "x"})

	assert.ErrorContains(t, err, "disk on fire")
}

func TestRunStation_ContinuousArrivals(t *testing.T) {
	roster := &fakeRoster{
		bays:  []station.Bay{openBay(1)},
		ships: []station.Ship{idleShip(1, station.RaceHuman, station.ClassPersonal)},
	}
	store := newMemoryStore()
	m := newMediator(t, roster, store, &summaryCapture{})

	arrivals := make(chan station.Ship, 2)
	arrivals <- idleShip(2, station.RaceMega, station.ClassRunabout)
	arrivals <- idleShip(1, station.RaceMega, station.ClassRunabout) // duplicate id, rejected
	close(arrivals)

	cfg := DefaultConfig()
	cfg.Mode = station.RunModeContinuous

	done := make(chan *RunStationResponse, 1)
	go func() {
		resp, err := m.Send(context.Background(), &RunStationCommand{StationName: "x", Scheduler: cfg, Arrivals: arrivals})
		assert.NoError(t, err)
		done <- resp.(*RunStationResponse)
	}()

	select {
	case result := <-done:
		assert.Equal(t, 2, result.Summary.Total)
		assert.Equal(t, 2, result.Summary.Serviced)
	case <-time.After(10 * time.Second):
		t.Fatal("continuous run did not finish after arrivals closed")
	}
}

func TestCheckRoster_Query(t *testing.T) {
	small := openBay(1)
	small.ClassMax = station.ClassPersonal
	roster := &fakeRoster{
		bays:  []station.Bay{small},
		ships: []station.Ship{idleShip(1, station.RaceHuman, station.ClassPersonal), idleShip(2, station.RaceHuman, station.ClassExplorer)},
	}
	m := newMediator(t, roster, newMemoryStore(), &summaryCapture{})

	resp, err := m.Send(context.Background(), &CheckRosterQuery{})

	require.NoError(t, err)
	check := resp.(*CheckRosterResponse)
	assert.Len(t, check.Bays, 1)
	assert.Equal(t, 2, check.Ships)
	require.Len(t, check.Problems, 1)
	assert.Equal(t, 2, check.Problems[0].ShipID)
}
