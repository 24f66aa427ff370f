package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/spacestation-go/internal/application/docking"
	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
	"github.com/andrescamacho/spacestation-go/test/helpers"
)

var scenarioEpoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type dockingContext struct {
	bays     []station.Bay
	ships    []station.Ship
	failFast bool

	catalog  *station.BayCatalog
	recorder *station.EventRecorder
	run      *station.StationRun
	runErr   error

	repos *helpers.TestRepositories
}

func (dc *dockingContext) reset() {
	dc.bays = nil
	dc.ships = nil
	dc.failFast = false
	dc.catalog = nil
	dc.recorder = station.NewEventRecorder()
	dc.run = nil
	dc.runErr = nil
	dc.repos = nil
}

// rosterStub serves the scenario's tables as rosters
type rosterStub struct {
	bays  []station.Bay
	ships []station.Ship
}

func (r *rosterStub) LoadBays(context.Context) ([]station.Bay, error)   { return r.bays, nil }
func (r *rosterStub) LoadShips(context.Context) ([]station.Ship, error) { return r.ships, nil }
func (r *rosterStub) LoadOrder(context.Context) ([]int, error)          { return nil, nil }

// Given steps

func (dc *dockingContext) theStationHasTheFollowingBays(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := getCellInt(table, row, "id")
		if err != nil {
			return err
		}
		classMin, err := getCellInt(table, row, "class_min")
		if err != nil {
			return err
		}
		classMax, err := getCellInt(table, row, "class_max")
		if err != nil {
			return err
		}
		env, err := station.ParseEnvironment(getCellValue(table, row, "env"))
		if err != nil {
			return err
		}

		bay := station.Bay{
			DockID:             id,
			DualEnvironment:    getCellValue(table, row, "dual") == "true",
			CurrentEnvironment: env,
			ClassMin:           station.ShipClass(classMin),
			ClassMax:           station.ShipClass(classMax),
		}
		if err := parseRaces(&bay, getCellValue(table, row, "races")); err != nil {
			return err
		}
		dc.bays = append(dc.bays, bay)
	}
	return nil
}

func (dc *dockingContext) theFollowingShipsAreQueued(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := getCellInt(table, row, "id")
		if err != nil {
			return err
		}
		class, err := getCellInt(table, row, "class")
		if err != nil {
			return err
		}
		dc.ships = append(dc.ships, station.Ship{
			FedID: id,
			Name:  getCellValue(table, row, "name"),
			Race:  station.ParseRace(getCellValue(table, row, "race")),
			Class: station.ShipClass(class),
		})
	}
	return nil
}

func (dc *dockingContext) failFastIsEnabled() error {
	dc.failFast = true
	return nil
}

// When steps

func (dc *dockingContext) theDispatchLoopRuns() error {
	catalog, err := station.NewBayCatalog(dc.bays)
	if err != nil {
		return err
	}
	registry, err := station.NewShipRegistry(dc.ships)
	if err != nil {
		return err
	}
	queue := station.NewServiceQueue()
	for _, s := range dc.ships {
		if err := queue.Enqueue(s.FedID); err != nil {
			return err
		}
	}

	clock := shared.NewMockClock(scenarioEpoch)
	cfg := docking.DefaultConfig()
	cfg.FailFast = dc.failFast
	cfg.WaitEventEvery = 1000

	dc.catalog = catalog
	dc.run = station.NewStationRun("bdd-run", "Test Station", cfg.Mode, queue.Len(), clock)
	scheduler := docking.NewScheduler(catalog, registry, queue, dc.recorder, clock, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dc.runErr = scheduler.Run(ctx, dc.run)
	return dc.runErr
}

func (dc *dockingContext) theStationRunsAndRecordsItsHistory(name string) error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	dc.repos = helpers.NewTestRepositories()

	handler := docking.NewRunStationHandler(
		&rosterStub{bays: dc.bays, ships: dc.ships},
		dc.repos.Runs,
		dc.repos.Events,
		[]station.EventSink{dc.recorder},
		nil,
		shared.NewMockClock(scenarioEpoch),
		nil,
	)

	resp, err := handler.Handle(context.Background(), &docking.RunStationCommand{
		StationName: name,
		Scheduler:   docking.DefaultConfig(),
	})
	if err != nil {
		return err
	}
	dc.run = resp.(*docking.RunStationResponse).Run
	return nil
}

// Then steps

func (dc *dockingContext) outcomeOf(shipID int) (station.ServiceOutcome, error) {
	if dc.run == nil {
		return station.ServiceOutcome{}, fmt.Errorf("the station has not run")
	}
	for _, o := range dc.run.Outcomes() {
		if o.ShipID == shipID {
			return o, nil
		}
	}
	return station.ServiceOutcome{}, fmt.Errorf("no outcome recorded for ship %d", shipID)
}

func (dc *dockingContext) shipShouldBeServicedAtBay(shipID, dockID int) error {
	o, err := dc.outcomeOf(shipID)
	if err != nil {
		return err
	}
	if !o.Succeeded() {
		return fmt.Errorf("ship %d ended %s (%s): %s", shipID, o.Status, o.ErrorTag, o.Reason)
	}
	if o.DockID != dockID {
		return fmt.Errorf("ship %d was serviced at bay %d, expected bay %d", shipID, o.DockID, dockID)
	}
	return nil
}

func (dc *dockingContext) shipShouldFailWith(shipID int, tag string) error {
	o, err := dc.outcomeOf(shipID)
	if err != nil {
		return err
	}
	if o.Status != station.OutcomeFailed {
		return fmt.Errorf("ship %d ended %s, expected failed", shipID, o.Status)
	}
	if string(o.ErrorTag) != tag {
		return fmt.Errorf("ship %d failed with %s, expected %s", shipID, o.ErrorTag, tag)
	}
	return nil
}

func (dc *dockingContext) bayShouldHaveBeenConverted(dockID int, not string) error {
	converted := false
	for _, e := range dc.recorder.OfKind(station.EventBayConverting) {
		if e.DockID == dockID {
			converted = true
		}
	}
	if wantConverted := not == ""; converted != wantConverted {
		return fmt.Errorf("bay %d converted = %t, expected %t", dockID, converted, wantConverted)
	}
	return nil
}

func (dc *dockingContext) bayShouldEndInTheEnvironment(dockID int, env string) error {
	bay, ok := dc.catalog.Bay(dockID)
	if !ok {
		return fmt.Errorf("bay %d not found", dockID)
	}
	if string(bay.CurrentEnvironment) != env {
		return fmt.Errorf("bay %d is in %s, expected %s", dockID, bay.CurrentEnvironment, env)
	}
	return nil
}

func (dc *dockingContext) everyBayShouldBeFree() error {
	if inUse, _ := dc.catalog.CountInUse(); inUse != 0 {
		return fmt.Errorf("%d bays still in use", inUse)
	}
	return nil
}

func (dc *dockingContext) eventIndex(kind station.EventKind, shipID int) int {
	for i, e := range dc.recorder.Events() {
		if e.Kind == kind && e.ShipID == shipID {
			return i
		}
	}
	return -1
}

func (dc *dockingContext) shipShouldOnlyGetABayAfterShipFinishedService(waiting, first int) error {
	selected := dc.eventIndex(station.EventBaySelected, waiting)
	complete := dc.eventIndex(station.EventServiceComplete, first)
	if selected < 0 || complete < 0 {
		return fmt.Errorf("missing events: bay_selected(%d)=%d service_complete(%d)=%d", waiting, selected, first, complete)
	}
	if selected < complete {
		return fmt.Errorf("ship %d got a bay before ship %d finished service", waiting, first)
	}
	return nil
}

func (dc *dockingContext) noBayShouldEverBeHeldByTwoShips() error {
	holders := make(map[int]int)
	for _, e := range dc.recorder.Events() {
		switch e.Kind {
		case station.EventBaySelected:
			if holder, held := holders[e.DockID]; held {
				return fmt.Errorf("bay %d selected for ship %d while held by ship %d", e.DockID, e.ShipID, holder)
			}
			holders[e.DockID] = e.ShipID
		case station.EventBayReleased:
			delete(holders, e.DockID)
		}
	}
	return nil
}

func (dc *dockingContext) shipsShouldBeDispatchedInTheOrder(list string) error {
	expected, err := parseIDList(list)
	if err != nil {
		return err
	}

	var got []int
	for _, e := range dc.recorder.OfKind(station.EventDequeued) {
		got = append(got, e.ShipID)
	}
	if fmt.Sprint(got) != fmt.Sprint(expected) {
		return fmt.Errorf("dispatch order %v, expected %v", got, expected)
	}
	return nil
}

func (dc *dockingContext) theHistoryShouldListRunWithServicedAndFailedShips(runs, serviced, failed int) error {
	handler := docking.NewListRunsHandler(dc.repos.Runs)
	resp, err := handler.Handle(context.Background(), &docking.ListRunsQuery{Limit: 10})
	if err != nil {
		return err
	}

	listed := resp.(*docking.ListRunsResponse).Runs
	if len(listed) != runs {
		return fmt.Errorf("history lists %d runs, expected %d", len(listed), runs)
	}
	if s := listed[0]; s.Serviced != serviced || s.Failed != failed {
		return fmt.Errorf("run %s: %d serviced %d failed, expected %d/%d", s.RunID, s.Serviced, s.Failed, serviced, failed)
	}
	return nil
}

func (dc *dockingContext) theStoredEventsOfShipShouldInclude(shipID int, kind string) error {
	handler := docking.NewGetRunEventsHandler(dc.repos.Runs, dc.repos.Events)
	resp, err := handler.Handle(context.Background(), &docking.GetRunEventsQuery{RunID: dc.run.ID(), ShipID: shipID})
	if err != nil {
		return err
	}

	var kinds []station.EventKind
	for _, e := range resp.(*docking.GetRunEventsResponse).Events {
		if e.Kind == station.EventKind(kind) {
			return nil
		}
		kinds = append(kinds, e.Kind)
	}
	return fmt.Errorf("ship %d has no stored %s event, got %v", shipID, kind, kinds)
}

// InitializeDockingScenario registers the dispatch loop and run history steps
func InitializeDockingScenario(ctx *godog.ScenarioContext) {
	dc := &dockingContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		dc.reset()
		return ctx, nil
	})

	ctx.Step(`^the station has the following bays:$`, dc.theStationHasTheFollowingBays)
	ctx.Step(`^the following ships are queued:$`, dc.theFollowingShipsAreQueued)
	ctx.Step(`^fail fast is enabled$`, dc.failFastIsEnabled)

	ctx.Step(`^the dispatch loop runs$`, dc.theDispatchLoopRuns)
	ctx.Step(`^the station "([^"]*)" runs and records its history$`, dc.theStationRunsAndRecordsItsHistory)

	ctx.Step(`^ship (\d+) should be serviced at bay (\d+)$`, dc.shipShouldBeServicedAtBay)
	ctx.Step(`^ship (\d+) should fail with "([^"]*)"$`, dc.shipShouldFailWith)
	ctx.Step(`^bay (\d+) should (not )?have been converted$`, func(dockID int, not string) error {
		return dc.bayShouldHaveBeenConverted(dockID, not)
	})
	ctx.Step(`^bay (\d+) should end in the "([^"]*)" environment$`, dc.bayShouldEndInTheEnvironment)
	ctx.Step(`^every bay should be free$`, dc.everyBayShouldBeFree)
	ctx.Step(`^ship (\d+) should only get a bay after ship (\d+) finished service$`, dc.shipShouldOnlyGetABayAfterShipFinishedService)
	ctx.Step(`^no bay should ever be held by two ships$`, dc.noBayShouldEverBeHeldByTwoShips)
	ctx.Step(`^ships should be dispatched in the order ([\d, ]+)$`, dc.shipsShouldBeDispatchedInTheOrder)
	ctx.Step(`^the history should list (\d+) runs? with (\d+) serviced and (\d+) failed ships$`, dc.theHistoryShouldListRunWithServicedAndFailedShips)
	ctx.Step(`^the stored events of ship (\d+) should include "([^"]*)"$`, dc.theStoredEventsOfShipShouldInclude)
}
