package station

import (
	"fmt"

	"github.com/andrescamacho/spacestation-go/pkg/utils"
)

// Stage is one step of a ship's service
type Stage string

const (
	StageRefuel          Stage = "refuel"
	StageCargoUnload     Stage = "cargo_unload"
	StageCargoLoad       Stage = "cargo_load"
	StageWasteCleanup    Stage = "waste_cleanup"
	StageRepair          Stage = "repair"
	StageDefenseRecharge Stage = "defense_recharge"
	StageFoodResupply    Stage = "food_resupply"
	StageUndock          Stage = "undock"
)

// ServiceStages lists the stages in execution order
var ServiceStages = []Stage{
	StageRefuel,
	StageCargoUnload,
	StageCargoLoad,
	StageWasteCleanup,
	StageRepair,
	StageDefenseRecharge,
	StageFoodResupply,
	StageUndock,
}

const (
	// MaxServiceCode is the highest repair/food code and quantity tier
	MaxServiceCode = 5

	defensePowerPerBlock  = 100
	cyclesPerDefenseBlock = 5
	cargoUnitsPerTier     = 100
)

// Duration tables, in cycles, indexed by ship class (index 0 unused).
// These are station policy, not physics: values are deliberately irregular.
var (
	dockingCycles   = [MaxShipClass + 1]int{0, 3, 3, 4, 4, 5, 7, 9, 7, 9, 8, 11, 15}
	undockingCycles = [MaxShipClass + 1]int{0, 1, 2, 3, 4, 4, 4, 9, 9, 11, 6, 12, 17}

	// severityCycles[code][class] drives both repair and food resupply
	severityCycles = [MaxServiceCode + 1][MaxShipClass + 1]int{
		1: {0, 4, 5, 4, 5, 7, 8, 9, 11, 11, 7, 12, 15},
		2: {0, 5, 5, 6, 5, 9, 10, 11, 13, 13, 7, 14, 18},
		3: {0, 6, 5, 6, 7, 10, 11, 13, 15, 17, 7, 19, 21},
		4: {0, 9, 8, 9, 9, 10, 12, 14, 17, 18, 9, 20, 24},
		5: {0, 10, 9, 9, 11, 12, 14, 16, 19, 19, 9, 11, 30},
	}

	// handlingCycles[tier][class] drives refuel, cargo and waste stages
	handlingCycles = [MaxServiceCode + 1][MaxShipClass + 1]int{
		1: {0, 1, 1, 2, 2, 2, 3, 3, 4, 4, 3, 5, 6},
		2: {0, 2, 2, 2, 3, 3, 4, 5, 5, 6, 4, 6, 8},
		3: {0, 2, 3, 3, 4, 4, 5, 6, 7, 7, 5, 8, 10},
		4: {0, 3, 3, 4, 5, 5, 6, 7, 8, 9, 6, 9, 12},
		5: {0, 3, 4, 5, 6, 6, 7, 9, 10, 11, 7, 11, 14},
	}
)

// ServicePolicy holds the fixed bay-handling delays and the defaults used by
// the stage tables
type ServicePolicy struct {
	PrepareCycles int
	ConvertCycles int
	ReadyCycles   int
	RetryCycles   int
	// DefenseTarget is used for ships that declare no defense capacity
	DefenseTarget int
}

// DefaultServicePolicy returns the station's standard delays
func DefaultServicePolicy() ServicePolicy {
	return ServicePolicy{
		PrepareCycles: 10,
		ConvertCycles: 30,
		ReadyCycles:   1,
		RetryCycles:   2,
		DefenseTarget: 1000,
	}
}

// DockingCycles returns the docking delay for class
func DockingCycles(class ShipClass) (int, error) {
	if !class.IsValid() {
		return 0, fmt.Errorf("no docking time for class %d", int(class))
	}
	return dockingCycles[class], nil
}

// UndockingCycles returns the undocking delay for class
func UndockingCycles(class ShipClass) (int, error) {
	if !class.IsValid() {
		return 0, fmt.Errorf("no undocking time for class %d", int(class))
	}
	return undockingCycles[class], nil
}

// SeverityCycles looks up a repair or food code (1-5) for class
func SeverityCycles(code int, class ShipClass) (int, error) {
	if code < 1 || code > MaxServiceCode {
		return 0, fmt.Errorf("service code %d outside 1-%d", code, MaxServiceCode)
	}
	if !class.IsValid() {
		return 0, fmt.Errorf("no service time for class %d", int(class))
	}
	return severityCycles[code][class], nil
}

// HandlingCycles looks up a quantity tier (1-5) for class
func HandlingCycles(tier int, class ShipClass) (int, error) {
	if tier < 1 || tier > MaxServiceCode {
		return 0, fmt.Errorf("quantity tier %d outside 1-%d", tier, MaxServiceCode)
	}
	if !class.IsValid() {
		return 0, fmt.Errorf("no handling time for class %d", int(class))
	}
	return handlingCycles[tier][class], nil
}

// TankTier maps the share of a tank to move onto tiers 1-5
func TankTier(amount, capacity int) int {
	if amount <= 0 {
		return 0
	}
	if capacity < amount {
		capacity = amount
	}
	return clampTier(utils.CeilDiv(amount*MaxServiceCode, capacity))
}

// CargoTier maps a cargo quantity onto tiers 1-5, one tier per hundred units
func CargoTier(amount int) int {
	if amount <= 0 {
		return 0
	}
	return clampTier(utils.CeilDiv(amount, cargoUnitsPerTier))
}

func clampTier(tier int) int {
	return utils.Max(1, utils.Min(tier, MaxServiceCode))
}

// DefenseRechargeCycles is the one arithmetic stage: five cycles per started
// block of 100 power. It rounds up so a ship never leaves under-charged.
func DefenseRechargeCycles(powerNeeded int) int {
	if powerNeeded <= 0 {
		return 0
	}
	return utils.CeilDiv(powerNeeded, defensePowerPerBlock) * cyclesPerDefenseBlock
}

// DefenseTargetFor returns the power ship should leave with
func (p ServicePolicy) DefenseTargetFor(ship *Ship) int {
	if ship.DefenseCapacity > 0 {
		return ship.DefenseCapacity
	}
	return p.DefenseTarget
}

// StageCycles computes the duration of stage for ship. active is false when
// the ship needs no work for that stage. An error means the stage cannot be
// timed (bad code or class) and must be skipped.
func (p ServicePolicy) StageCycles(stage Stage, ship *Ship) (cycles int, active bool, err error) {
	switch stage {
	case StageRefuel:
		return handling(TankTier(ship.FuelNeeded(), ship.FuelCapacity), ship.Class)
	case StageCargoUnload:
		return handling(CargoTier(ship.CargoToUnload), ship.Class)
	case StageCargoLoad:
		return handling(CargoTier(ship.CargoToLoad), ship.Class)
	case StageWasteCleanup:
		return handling(TankTier(ship.WasteOnBoard, ship.WasteCapacity), ship.Class)
	case StageRepair:
		return severity(ship.RepairCode, ship.Class)
	case StageFoodResupply:
		return severity(ship.FoodCode, ship.Class)
	case StageDefenseRecharge:
		needed := ship.DefenseNeeded(p.DefenseTargetFor(ship))
		if needed == 0 {
			return 0, false, nil
		}
		return DefenseRechargeCycles(needed), true, nil
	case StageUndock:
		cycles, err := UndockingCycles(ship.Class)
		return cycles, err == nil, err
	default:
		return 0, false, fmt.Errorf("unknown stage %q", stage)
	}
}

func handling(tier int, class ShipClass) (int, bool, error) {
	if tier == 0 {
		return 0, false, nil
	}
	cycles, err := HandlingCycles(tier, class)
	return cycles, err == nil, err
}

func severity(code int, class ShipClass) (int, bool, error) {
	if code == 0 {
		return 0, false, nil
	}
	cycles, err := SeverityCycles(code, class)
	return cycles, err == nil, err
}
