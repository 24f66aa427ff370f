package station

// IsCompatible reports whether bay can host ship as-is: the class fits the
// bay's range, the bay supports the crew race and its current environment is
// the one the crew requires.
//
// An unrecognized race is an error, never a silent mismatch.
func IsCompatible(bay *Bay, ship *Ship) (bool, error) {
	required, err := ship.RequiredEnvironment()
	if err != nil {
		return false, err
	}
	if !bay.AcceptsClass(ship.Class) || !bay.SupportsRace(ship.Race) {
		return false, nil
	}
	return bay.CurrentEnvironment == required, nil
}

// IsConvertible reports whether a dual-environment bay could host ship after
// switching environment. A bay already in the required environment is not
// convertible; IsCompatible covers it.
func IsConvertible(bay *Bay, ship *Ship) (bool, error) {
	required, err := ship.RequiredEnvironment()
	if err != nil {
		return false, err
	}
	if !bay.DualEnvironment {
		return false, nil
	}
	if !bay.AcceptsClass(ship.Class) || !bay.SupportsRace(ship.Race) {
		return false, nil
	}
	return bay.CurrentEnvironment != required, nil
}

// CanEverHost reports whether bay could host ship at some point, ignoring
// occupancy. Used to tell "busy, retry" apart from "impossible".
func CanEverHost(bay *Bay, ship *Ship) (bool, error) {
	compatible, err := IsCompatible(bay, ship)
	if err != nil || compatible {
		return compatible, err
	}
	return IsConvertible(bay, ship)
}
