package roster

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// ClassValue is a ship class as written in a roster: either the ordinal
// (5, "5") or the class name ("MediumShuttle").
type ClassValue string

func (c *ClassValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ClassValue(s)
		return nil
	}
	*c = ClassValue(data)
	return nil
}

func (c *ClassValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: ship class must be a number or a name", node.Line)
	}
	*c = ClassValue(node.Value)
	return nil
}

// Parse resolves the class. Unknown names are an error.
func (c ClassValue) Parse() (station.ShipClass, error) {
	return station.ParseShipClass(string(c))
}

// ShipRecord is one entry of the ship roster
type ShipRecord struct {
	ID      int        `json:"id" yaml:"id" validate:"gt=0"`
	Name    string     `json:"name" yaml:"name" validate:"required"`
	Captain string     `json:"captain" yaml:"captain"`
	Race    string     `json:"race" yaml:"race"`
	Class   ClassValue `json:"class" yaml:"class"`

	FuelOnBoard     int `json:"fuel_on_board" yaml:"fuel_on_board" validate:"min=0"`
	FuelCapacity    int `json:"fuel_capacity" yaml:"fuel_capacity" validate:"min=0"`
	CargoToUnload   int `json:"cargo_to_unload" yaml:"cargo_to_unload" validate:"min=0"`
	CargoToLoad     int `json:"cargo_to_load" yaml:"cargo_to_load" validate:"min=0"`
	WasteOnBoard    int `json:"waste_on_board" yaml:"waste_on_board" validate:"min=0"`
	WasteCapacity   int `json:"waste_capacity" yaml:"waste_capacity" validate:"min=0"`
	RepairCode      int `json:"repair_code" yaml:"repair_code"`
	FoodCode        int `json:"food_code" yaml:"food_code"`
	DefensePower    int `json:"defense_power" yaml:"defense_power" validate:"min=0"`
	DefenseCapacity int `json:"defense_capacity" yaml:"defense_capacity" validate:"min=0"`
}

// ToShip converts the record. Race and class problems are left for the
// scheduler to report against the ship; an unknown class name becomes
// class 0 so it is rejected the same way as an out-of-range ordinal.
func (r ShipRecord) ToShip() station.Ship {
	class, err := r.Class.Parse()
	if err != nil {
		class = 0
	}
	return station.Ship{
		FedID:           r.ID,
		Name:            r.Name,
		Captain:         r.Captain,
		Race:            station.ParseRace(r.Race),
		Class:           class,
		FuelOnBoard:     r.FuelOnBoard,
		FuelCapacity:    r.FuelCapacity,
		CargoToUnload:   r.CargoToUnload,
		CargoToLoad:     r.CargoToLoad,
		WasteOnBoard:    r.WasteOnBoard,
		WasteCapacity:   r.WasteCapacity,
		RepairCode:      r.RepairCode,
		FoodCode:        r.FoodCode,
		DefensePower:    r.DefensePower,
		DefenseCapacity: r.DefenseCapacity,
	}
}

// BayRecord is one entry of the bay roster
type BayRecord struct {
	ID              int        `json:"id" yaml:"id" validate:"gt=0"`
	SupportsHuman   bool       `json:"supports_human" yaml:"supports_human"`
	SupportsAqua    bool       `json:"supports_aqua" yaml:"supports_aqua"`
	SupportsMega    bool       `json:"supports_mega" yaml:"supports_mega"`
	DualEnvironment bool       `json:"dual_environment" yaml:"dual_environment"`
	Environment     string     `json:"environment" yaml:"environment" validate:"required"`
	ClassMin        ClassValue `json:"class_min" yaml:"class_min" validate:"required"`
	ClassMax        ClassValue `json:"class_max" yaml:"class_max" validate:"required"`
}

// ToBay converts the record. Bays are station infrastructure, so any
// invalid attribute is an error rather than something reported later.
func (r BayRecord) ToBay() (station.Bay, error) {
	env, err := station.ParseEnvironment(r.Environment)
	if err != nil {
		return station.Bay{}, fmt.Errorf("bay %d: %w", r.ID, err)
	}
	classMin, err := r.ClassMin.Parse()
	if err != nil {
		return station.Bay{}, fmt.Errorf("bay %d: class_min: %w", r.ID, err)
	}
	classMax, err := r.ClassMax.Parse()
	if err != nil {
		return station.Bay{}, fmt.Errorf("bay %d: class_max: %w", r.ID, err)
	}

	bay := station.Bay{
		DockID:             r.ID,
		SupportsHuman:      r.SupportsHuman,
		SupportsAqua:       r.SupportsAqua,
		SupportsMega:       r.SupportsMega,
		DualEnvironment:    r.DualEnvironment,
		CurrentEnvironment: env,
		ClassMin:           classMin,
		ClassMax:           classMax,
	}
	if !classMin.IsValid() || !classMax.IsValid() {
		return station.Bay{}, fmt.Errorf("bay %d: class range [%d, %d] is outside 1-12", r.ID, int(classMin), int(classMax))
	}
	return bay, bay.Validate()
}
