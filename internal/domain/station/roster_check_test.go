package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

func TestCheckRoster(t *testing.T) {
	small := oxygenBay(1)
	small.ClassMax = ClassMediumShuttle
	bays := []Bay{small, dualBay(2, EnvironmentOxygen)}
	bays[1].ClassMax = ClassSkeeter

	ships := []Ship{
		humanShip(1, ClassMediumShuttle),
		amphibianShip(2, ClassPersonal),
		amphibianShip(3, ClassExplorer),
		{FedID: 4, Name: "Odd", Race: "ROMULAN", Class: ClassPersonal},
		{FedID: 5, Name: "Big", Race: RaceHuman, Class: 14},
	}

	problems := CheckRoster(bays, ships)

	require.Len(t, problems, 3)
	assert.Equal(t, 3, problems[0].ShipID)
	assert.Equal(t, shared.ErrorTagNoCompatibleBay, problems[0].Tag)
	assert.Equal(t, 4, problems[1].ShipID)
	assert.Equal(t, shared.ErrorTagUnrecognizedRace, problems[1].Tag)
	assert.Equal(t, 5, problems[2].ShipID)
	assert.Equal(t, shared.ErrorTagUnrecognizedClass, problems[2].Tag)
	assert.Contains(t, problems[0].String(), "no-compatible-bay")
}

func TestCheckRoster_Clean(t *testing.T) {
	assert.Empty(t, CheckRoster([]Bay{oxygenBay(1)}, []Ship{humanShip(1, ClassDreadnaught)}))
}
