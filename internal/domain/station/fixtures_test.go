package station

func humanShip(id int, class ShipClass) Ship {
	return Ship{FedID: id, Name: "Ship-" + string(rune('A'+id%26)), Race: RaceHuman, Class: class}
}

func amphibianShip(id int, class ShipClass) Ship {
	s := humanShip(id, class)
	s.Race = RaceAmphibian
	return s
}

func oxygenBay(id int) Bay {
	return Bay{
		DockID:             id,
		SupportsHuman:      true,
		SupportsMega:       true,
		CurrentEnvironment: EnvironmentOxygen,
		ClassMin:           MinShipClass,
		ClassMax:           MaxShipClass,
	}
}

func dualBay(id int, env Environment) Bay {
	return Bay{
		DockID:             id,
		SupportsHuman:      true,
		SupportsAqua:       true,
		SupportsMega:       true,
		DualEnvironment:    true,
		CurrentEnvironment: env,
		ClassMin:           MinShipClass,
		ClassMax:           MaxShipClass,
	}
}

func bayPtrs(bays ...Bay) []*Bay {
	out := make([]*Bay, len(bays))
	for i := range bays {
		out[i] = &bays[i]
	}
	return out
}
