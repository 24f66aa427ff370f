package station

// Selection is the allocator's answer for one ship
type Selection struct {
	Bay             *Bay
	NeedsConversion bool
}

// Found reports whether a bay was selected
func (s Selection) Found() bool {
	return s.Bay != nil
}

// SelectBay scans bays in catalog order, skipping those in use.
//
// The first exact match wins. Without one, the last convertible bay seen in
// the same pass is returned with NeedsConversion set. A zero Selection means
// nothing is free right now.
//
// SelectBay does not mutate bays; BayCatalog.Acquire wraps it in the lock
// and performs the reservation.
func SelectBay(bays []*Bay, ship *Ship) (Selection, error) {
	if _, err := ship.RequiredEnvironment(); err != nil {
		return Selection{}, err
	}
	if err := ship.Validate(); err != nil {
		return Selection{}, err
	}

	var convertible *Bay
	for _, bay := range bays {
		if bay.InUse {
			continue
		}

		compatible, err := IsCompatible(bay, ship)
		if err != nil {
			return Selection{}, err
		}
		if compatible {
			return Selection{Bay: bay}, nil
		}

		ok, err := IsConvertible(bay, ship)
		if err != nil {
			return Selection{}, err
		}
		if ok {
			convertible = bay
		}
	}

	if convertible != nil {
		return Selection{Bay: convertible, NeedsConversion: true}, nil
	}
	return Selection{}, nil
}
