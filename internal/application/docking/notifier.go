package docking

import (
	"context"
	"fmt"
	"sync"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// Completion is what a worker hands back once it stops working on a ship
type Completion struct {
	DockID  int
	ShipID  int
	Outcome station.ServiceOutcome
}

// CompletionNotifier returns bays to the pool and undocks ships. It is the
// only path that releases a bay once a ship has been assigned one.
// Completions are handled one at a time so the ownership check, undock and
// release of one call never interleave with another's.
type CompletionNotifier struct {
	mu        sync.Mutex
	catalog   *station.BayCatalog
	registry  *station.ShipRegistry
	events    publisher
	sequences map[int]int // ship id -> dispatch sequence
}

// NewCompletionNotifier creates a notifier over the shared catalog and registry
func NewCompletionNotifier(
	catalog *station.BayCatalog,
	registry *station.ShipRegistry,
	sink station.EventSink,
	clock shared.Clock,
) *CompletionNotifier {
	return &CompletionNotifier{
		catalog:   catalog,
		registry:  registry,
		events:    publisher{sink: sink, clock: clock},
		sequences: make(map[int]int),
	}
}

// track records the dispatch sequence of a ship holding a bay, so a direct
// OnServiceComplete reports under the same sequence as the rest of its events.
func (n *CompletionNotifier) track(shipID, seq int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sequences[shipID] = seq
}

// OnServiceComplete releases dockID and marks shipID undocked and serviced.
// A repeated call for the same pair changes nothing and returns false. A bay
// held by another ship is refused with a BayOwnershipError.
func (n *CompletionNotifier) OnServiceComplete(ctx context.Context, dockID, shipID int) (bool, error) {
	ship, ok := n.registry.Get(shipID)
	if !ok {
		return false, shared.NewShipNotFoundError(shipID)
	}
	return n.release(ctx, 0, &ship, dockID, nil)
}

// Notify handles a worker completion: successful services are released as
// complete, anything else is reported as a failure and released without
// marking the ship serviced.
func (n *CompletionNotifier) Notify(ctx context.Context, c Completion) (bool, error) {
	ship, ok := n.registry.Get(c.ShipID)
	if !ok {
		return false, shared.NewShipNotFoundError(c.ShipID)
	}

	var cause error
	if !c.Outcome.Succeeded() {
		cause = outcomeError(c.Outcome)
	}
	return n.release(ctx, c.Outcome.Sequence, &ship, c.DockID, cause)
}

// abort releases a bay reserved during dispatch, before a worker exists
func (n *CompletionNotifier) abort(ctx context.Context, seq int, ship *station.Ship, dockID int, cause error) error {
	_, err := n.release(ctx, seq, ship, dockID, cause)
	return err
}

func (n *CompletionNotifier) release(ctx context.Context, seq int, ship *station.Ship, dockID int, cause error) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if seq == 0 {
		seq = n.sequences[ship.FedID]
	}
	serviced := cause == nil

	bay, ok := n.catalog.Bay(dockID)
	if !ok {
		return false, shared.NewBayNotFoundError(dockID)
	}
	if bay.InUse && bay.OccupyingShipID != ship.FedID {
		return false, shared.NewBayOwnershipError(dockID, ship.FedID, bay.OccupyingShipID)
	}

	// the ship leaves the registry's view of the bay before the bay is
	// offered to the next ship
	undocked, err := n.registry.MarkUndocked(ship.FedID, dockID, serviced)
	if err != nil {
		return false, fmt.Errorf("undock ship %d: %w", ship.FedID, err)
	}
	// a ship aborted before docking still holds the bay but was never docked
	if undocked || bay.InUse {
		if serviced {
			n.events.ship(ctx, station.EventServiceComplete, seq, ship, dockID, "service complete")
		} else {
			n.events.failure(ctx, seq, ship, dockID, cause)
		}
	}
	if undocked {
		n.events.ship(ctx, station.EventUndocked, seq, ship, dockID, "undocked from bay %d", dockID)
	}

	released, err := n.catalog.Release(dockID, ship.FedID)
	if err != nil {
		return undocked, fmt.Errorf("release bay %d for ship %d: %w", dockID, ship.FedID, err)
	}
	if released {
		n.events.ship(ctx, station.EventBayReleased, seq, ship, dockID, "bay %d released", dockID)
		delete(n.sequences, ship.FedID)
	}
	return undocked || released, nil
}

type outcomeErr struct {
	outcome station.ServiceOutcome
}

func (e *outcomeErr) Error() string { return e.outcome.Reason }

func (e *outcomeErr) FailedStage() station.Stage { return e.outcome.Stage }

func (e *outcomeErr) Unwrap() error {
	if e.outcome.Status == station.OutcomeCancelled {
		return context.Canceled
	}
	return nil
}

func outcomeError(o station.ServiceOutcome) error {
	return &outcomeErr{outcome: o}
}
