package station

import (
	"fmt"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// RosterProblem is one start-up finding about a ship that can never be serviced
type RosterProblem struct {
	ShipID   int
	ShipName string
	Tag      shared.ErrorTag
	Reason   string
}

func (p RosterProblem) String() string {
	return fmt.Sprintf("ship %d (%s) [%s]: %s", p.ShipID, p.ShipName, p.Tag, p.Reason)
}

// CheckRoster reports every ship that fails validation or that no bay in
// bays could ever host, whatever the occupancy. Ships are checked in order.
func CheckRoster(bays []Bay, ships []Ship) []RosterProblem {
	ptrs := make([]*Bay, len(bays))
	for i := range bays {
		ptrs[i] = &bays[i]
	}

	var problems []RosterProblem
	for i := range ships {
		ship := &ships[i]
		if err := checkShip(ptrs, ship); err != nil {
			problems = append(problems, RosterProblem{
				ShipID:   ship.FedID,
				ShipName: ship.Name,
				Tag:      shared.TagOf(err),
				Reason:   err.Error(),
			})
		}
	}
	return problems
}

func checkShip(bays []*Bay, ship *Ship) error {
	if _, err := ship.RequiredEnvironment(); err != nil {
		return err
	}
	if err := ship.Validate(); err != nil {
		return err
	}
	for _, bay := range bays {
		ok, err := CanEverHost(bay, ship)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return shared.NewNoCompatibleBayError(ship.FedID, ship.Name)
}
