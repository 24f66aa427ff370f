package station

import "fmt"

// Bay is a docking bay. Compatibility attributes are static; the occupancy
// fields are owned by BayCatalog and only change under its lock.
type Bay struct {
	DockID             int
	SupportsHuman      bool
	SupportsAqua       bool
	SupportsMega       bool
	DualEnvironment    bool
	CurrentEnvironment Environment
	ClassMin           ShipClass
	ClassMax           ShipClass

	InUse             bool
	OccupyingShipID   int
	OccupyingShipName string
	// ConvertEnvironment is set by the selector when the bay must change
	// environment before use, and cleared once the bay has been prepared.
	ConvertEnvironment bool
}

// AcceptsClass reports whether class lies within [ClassMin, ClassMax]
func (b *Bay) AcceptsClass(class ShipClass) bool {
	return class >= b.ClassMin && class <= b.ClassMax
}

// SupportsRace reports the crew-support flag for race
func (b *Bay) SupportsRace(race Race) bool {
	switch race {
	case RaceHuman:
		return b.SupportsHuman
	case RaceMega:
		return b.SupportsMega
	case RaceAmphibian:
		return b.SupportsAqua
	}
	return false
}

// Validate checks the static roster attributes
func (b *Bay) Validate() error {
	if b.DockID <= 0 {
		return fmt.Errorf("bay id must be positive, got %d", b.DockID)
	}
	if b.ClassMin > b.ClassMax {
		return fmt.Errorf("bay %d: class range [%d, %d] is empty", b.DockID, b.ClassMin, b.ClassMax)
	}
	if _, err := ParseEnvironment(string(b.CurrentEnvironment)); err != nil {
		return fmt.Errorf("bay %d: %w", b.DockID, err)
	}
	return nil
}

func (b *Bay) String() string {
	return fmt.Sprintf("Bay[%d class=%d-%d env=%s dual=%t in_use=%t]",
		b.DockID, int(b.ClassMin), int(b.ClassMax), b.CurrentEnvironment, b.DualEnvironment, b.InUse)
}
