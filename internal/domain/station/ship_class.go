package station

import (
	"fmt"
	"strconv"
	"strings"
)

// ShipClass is the ordinal size class of a ship (1-12). It bounds the bays a
// ship may use and indexes every duration table.
type ShipClass int

const (
	ClassRunabout ShipClass = iota + 1
	ClassPersonal
	ClassSkeeter
	ClassSmallShuttle
	ClassMediumShuttle
	ClassLargeShuttle
	ClassPersonnelTransport
	ClassCargoTransport
	ClassCargoTransportII
	ClassScoutShip
	ClassExplorer
	ClassDreadnaught
)

const (
	MinShipClass = ClassRunabout
	MaxShipClass = ClassDreadnaught
)

var classNames = [...]string{
	ClassRunabout:           "Runabout",
	ClassPersonal:           "Personal",
	ClassSkeeter:            "Skeeter",
	ClassSmallShuttle:       "SmallShuttle",
	ClassMediumShuttle:      "MediumShuttle",
	ClassLargeShuttle:       "LargeShuttle",
	ClassPersonnelTransport: "PersonnelTransport",
	ClassCargoTransport:     "CargoTransport",
	ClassCargoTransportII:   "CargoTransportII",
	ClassScoutShip:          "ScoutShip",
	ClassExplorer:           "Explorer",
	ClassDreadnaught:        "Dreadnaught",
}

// IsValid reports whether c is inside the supported class range
func (c ShipClass) IsValid() bool {
	return c >= MinShipClass && c <= MaxShipClass
}

func (c ShipClass) String() string {
	if !c.IsValid() {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[c]
}

// ParseShipClass accepts either the ordinal ("5") or the class name
// ("MediumShuttle", case-insensitive). Out-of-range ordinals are returned
// unchanged so the scheduler can report them per ship.
func ParseShipClass(s string) (ShipClass, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return ShipClass(n), nil
	}
	for c := MinShipClass; c <= MaxShipClass; c++ {
		if strings.EqualFold(classNames[c], s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("ship class %q is not recognized", s)
}
