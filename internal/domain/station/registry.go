package station

import (
	"sync"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// ShipRegistry holds every ship record for the run, keyed by federation id.
// Records are never removed; serviced ships stay as history.
//
// Thread-Safety:
// All access is guarded by one RWMutex. Get returns copies, so callers never
// hold a pointer into shared state.
type ShipRegistry struct {
	mu    sync.RWMutex
	ships map[int]*Ship
	order []int
}

// NewShipRegistry creates a registry from roster ships, rejecting duplicate ids
func NewShipRegistry(ships []Ship) (*ShipRegistry, error) {
	r := &ShipRegistry{ships: make(map[int]*Ship, len(ships))}
	for i := range ships {
		if err := r.Add(ships[i]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a new ship with cleared runtime state.
// Thread-safe.
func (r *ShipRegistry) Add(ship Ship) error {
	if ship.FedID <= 0 {
		return shared.NewValidationError("fed_id", "must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ships[ship.FedID]; exists {
		return shared.NewDuplicateShipError(ship.FedID)
	}

	ship.Docked = false
	ship.AssignedBayID = 0
	ship.ServiceComplete = false
	r.ships[ship.FedID] = &ship
	r.order = append(r.order, ship.FedID)
	return nil
}

// Get returns a copy of the ship record.
// Thread-safe.
func (r *ShipRegistry) Get(fedID int) (Ship, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ship, ok := r.ships[fedID]
	if !ok {
		return Ship{}, false
	}
	return *ship, true
}

// All returns copies of every ship in registration order.
// Thread-safe.
func (r *ShipRegistry) All() []Ship {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Ship, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.ships[id])
	}
	return out
}

// MarkDocked records that ship fedID is docked at dockID.
// Thread-safe.
func (r *ShipRegistry) MarkDocked(fedID, dockID int) error {
	return r.update(fedID, func(s *Ship) {
		s.Docked = true
		s.AssignedBayID = dockID
	})
}

// MarkUndocked clears the docking state. Returns false when the ship was not
// docked at dockID (already undocked, or docked elsewhere).
// Thread-safe.
func (r *ShipRegistry) MarkUndocked(fedID, dockID int, serviceComplete bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ship, ok := r.ships[fedID]
	if !ok {
		return false, shared.NewShipNotFoundError(fedID)
	}
	if !ship.Docked || ship.AssignedBayID != dockID {
		return false, nil
	}

	ship.Docked = false
	ship.AssignedBayID = 0
	ship.ServiceComplete = serviceComplete
	return true, nil
}

// Update applies fn to the stored ship under the registry lock.
// fn must not change identity or docking fields.
// Thread-safe.
func (r *ShipRegistry) Update(fedID int, fn func(*Ship)) error {
	return r.update(fedID, fn)
}

func (r *ShipRegistry) update(fedID int, fn func(*Ship)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ship, ok := r.ships[fedID]
	if !ok {
		return shared.NewShipNotFoundError(fedID)
	}
	fn(ship)
	return nil
}

// DockedAt returns the ids of ships currently assigned to dockID.
// Thread-safe.
func (r *ShipRegistry) DockedAt(dockID int) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []int
	for _, id := range r.order {
		if s := r.ships[id]; s.Docked && s.AssignedBayID == dockID {
			ids = append(ids, id)
		}
	}
	return ids
}
