package station

import (
	"fmt"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// Ship is a visiting ship record. Static attributes come from the roster;
// the runtime fields (Docked, AssignedBayID, ServiceComplete) are only
// mutated through ShipRegistry so readers always see a consistent copy.
//
// Invariants:
// - FedID is unique and never changes
// - AssignedBayID != 0 if and only if Docked
type Ship struct {
	FedID   int
	Name    string
	Captain string
	Race    Race
	Class   ShipClass

	FuelOnBoard     int
	FuelCapacity    int
	CargoToUnload   int
	CargoToLoad     int
	WasteOnBoard    int
	WasteCapacity   int
	RepairCode      int
	FoodCode        int
	DefensePower    int
	DefenseCapacity int

	Docked          bool
	AssignedBayID   int
	ServiceComplete bool
}

// Validate checks the attributes the allocator depends on
func (s *Ship) Validate() error {
	if !s.Race.IsKnown() {
		return shared.NewUnrecognizedRaceError(s.FedID, string(s.Race))
	}
	if !s.Class.IsValid() {
		return shared.NewUnrecognizedClassError(s.FedID, int(s.Class))
	}
	return nil
}

// RequiredEnvironment returns the environment the ship's crew needs
func (s *Ship) RequiredEnvironment() (Environment, error) {
	env, err := s.Race.RequiredEnvironment()
	if err != nil {
		return "", shared.NewUnrecognizedRaceError(s.FedID, string(s.Race))
	}
	return env, nil
}

// FuelNeeded returns the units required to fill the tank
func (s *Ship) FuelNeeded() int {
	if s.FuelOnBoard >= s.FuelCapacity {
		return 0
	}
	return s.FuelCapacity - s.FuelOnBoard
}

// DefenseNeeded returns the power required to reach target
func (s *Ship) DefenseNeeded(target int) int {
	if s.DefensePower >= target {
		return 0
	}
	return target - s.DefensePower
}

func (s *Ship) String() string {
	return fmt.Sprintf("Ship[%d %s class=%d race=%s]", s.FedID, s.Name, int(s.Class), s.Race)
}
