package station

import (
	"fmt"
	"sync"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// BayCatalog is the ordered collection of bays shared by the dispatch loop and
// the completion path.
//
// Thread-Safety:
// Every read and write of bay occupancy goes through the catalog lock.
// Selection and reservation happen in one critical section (Acquire), so two
// ships can never both observe the same bay as free.
//
// Invariants:
// - A bay is held by at most one ship
// - InUse bays + free bays == Len() at all times
// - ConvertEnvironment is cleared by Prepare before the ship docks
type BayCatalog struct {
	mu    sync.RWMutex
	bays  []*Bay
	index map[int]*Bay
}

// NewBayCatalog builds a catalog in roster order. Bays are copied; occupancy
// fields from the roster are ignored and start free. Environment codes are
// stored in their canonical form.
func NewBayCatalog(bays []Bay) (*BayCatalog, error) {
	c := &BayCatalog{
		bays:  make([]*Bay, 0, len(bays)),
		index: make(map[int]*Bay, len(bays)),
	}

	for i := range bays {
		bay := bays[i]
		if err := bay.Validate(); err != nil {
			return nil, err
		}
		env, err := ParseEnvironment(string(bay.CurrentEnvironment))
		if err != nil {
			return nil, fmt.Errorf("bay %d: %w", bay.DockID, err)
		}
		bay.CurrentEnvironment = env
		if _, exists := c.index[bay.DockID]; exists {
			return nil, fmt.Errorf("duplicate bay id %d", bay.DockID)
		}

		bay.InUse = false
		bay.OccupyingShipID = 0
		bay.OccupyingShipName = ""
		bay.ConvertEnvironment = false

		c.bays = append(c.bays, &bay)
		c.index[bay.DockID] = &bay
	}

	return c, nil
}

// Len returns the number of bays
func (c *BayCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bays)
}

// Acquire selects a bay for ship and reserves it in the same critical section.
// Returns a copy of the reserved bay (with ConvertEnvironment reflecting the
// selection) or a zero Selection when nothing suitable is free.
// Thread-safe.
func (c *BayCatalog) Acquire(ship *Ship) (Selection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel, err := SelectBay(c.bays, ship)
	if err != nil || !sel.Found() {
		return Selection{}, err
	}

	bay := sel.Bay
	bay.InUse = true
	bay.OccupyingShipID = ship.FedID
	bay.OccupyingShipName = ship.Name
	bay.ConvertEnvironment = sel.NeedsConversion

	view := *bay
	return Selection{Bay: &view, NeedsConversion: sel.NeedsConversion}, nil
}

// Prepare consumes the bay's convert flag: a flagged bay switches to the
// required environment. Returns whether a conversion happened.
// Thread-safe.
func (c *BayCatalog) Prepare(dockID, shipID int, required Environment) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bay, err := c.heldByUnsafe(dockID, shipID)
	if err != nil {
		return false, err
	}

	converted := bay.ConvertEnvironment
	if converted {
		bay.CurrentEnvironment = required
	}
	bay.ConvertEnvironment = false
	return converted, nil
}

// Release returns a bay to the pool. Releasing an already free bay is a no-op
// returning false; releasing a bay held by another ship is refused.
// Thread-safe.
func (c *BayCatalog) Release(dockID, shipID int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bay, ok := c.index[dockID]
	if !ok {
		return false, shared.NewBayNotFoundError(dockID)
	}
	if !bay.InUse {
		return false, nil
	}
	if bay.OccupyingShipID != shipID {
		return false, shared.NewBayOwnershipError(dockID, shipID, bay.OccupyingShipID)
	}

	bay.InUse = false
	bay.OccupyingShipID = 0
	bay.OccupyingShipName = ""
	bay.ConvertEnvironment = false
	return true, nil
}

func (c *BayCatalog) heldByUnsafe(dockID, shipID int) (*Bay, error) {
	bay, ok := c.index[dockID]
	if !ok {
		return nil, shared.NewBayNotFoundError(dockID)
	}
	if !bay.InUse || bay.OccupyingShipID != shipID {
		return nil, shared.NewBayOwnershipError(dockID, shipID, bay.OccupyingShipID)
	}
	return bay, nil
}

// Bay returns a copy of the bay with dockID.
// Thread-safe.
func (c *BayCatalog) Bay(dockID int) (Bay, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bay, ok := c.index[dockID]
	if !ok {
		return Bay{}, false
	}
	return *bay, true
}

// Snapshot returns a consistent copy of all bays in catalog order.
// Thread-safe.
func (c *BayCatalog) Snapshot() []Bay {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Bay, len(c.bays))
	for i, bay := range c.bays {
		out[i] = *bay
	}
	return out
}

// CountInUse returns the number of held and free bays.
// Thread-safe.
func (c *BayCatalog) CountInUse() (inUse, free int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, bay := range c.bays {
		if bay.InUse {
			inUse++
		} else {
			free++
		}
	}
	return inUse, free
}

// CanEverHost reports whether any bay, busy or not, could host ship.
// Thread-safe.
func (c *BayCatalog) CanEverHost(ship *Ship) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, bay := range c.bays {
		ok, err := CanEverHost(bay, ship)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
