package station

import (
	"fmt"
	"strings"
)

// Race is the crew race of a ship. The raw roster value is preserved so an
// unrecognized race can be reported verbatim at allocation time.
type Race string

const (
	RaceHuman     Race = "HUMAN"
	RaceMega      Race = "MEGA"
	RaceAmphibian Race = "AMPHIBIAN"
)

// Environment is the atmosphere a bay currently provides
type Environment string

const (
	EnvironmentOxygen Environment = "OXYGEN"
	EnvironmentAqua   Environment = "AQUA"
)

// ParseRace normalizes a roster race value. Unknown values are kept as-is
// (upper-cased) and rejected later by RequiredEnvironment.
func ParseRace(s string) Race {
	return Race(strings.ToUpper(strings.TrimSpace(s)))
}

// IsKnown reports whether r is one of the supported crew races
func (r Race) IsKnown() bool {
	switch r {
	case RaceHuman, RaceMega, RaceAmphibian:
		return true
	}
	return false
}

// RequiredEnvironment derives the environment a crew needs.
// Human and Mega breathe oxygen; Amphibian needs aqua.
func (r Race) RequiredEnvironment() (Environment, error) {
	switch r {
	case RaceHuman, RaceMega:
		return EnvironmentOxygen, nil
	case RaceAmphibian:
		return EnvironmentAqua, nil
	default:
		return "", fmt.Errorf("race %q is not recognized", string(r))
	}
}

// ParseEnvironment accepts the short roster codes (O, A) or the full names
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "O", "OXYGEN":
		return EnvironmentOxygen, nil
	case "A", "AQUA":
		return EnvironmentAqua, nil
	default:
		return "", fmt.Errorf("environment %q is not recognized", s)
	}
}

func (e Environment) String() string {
	return string(e)
}
