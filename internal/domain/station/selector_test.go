package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

func TestSelectBay_HumanClassFiveExactMatch(t *testing.T) {
	bays := bayPtrs(Bay{
		DockID:             1,
		SupportsHuman:      true,
		CurrentEnvironment: EnvironmentOxygen,
		ClassMin:           1,
		ClassMax:           12,
	})
	ship := humanShip(1, ClassMediumShuttle)

	sel, err := SelectBay(bays, &ship)

	require.NoError(t, err)
	require.True(t, sel.Found())
	assert.Equal(t, 1, sel.Bay.DockID)
	assert.False(t, sel.NeedsConversion)
	assert.False(t, bays[0].InUse, "selection alone must not reserve")
}

func TestSelectBay_AmphibianGetsConvertibleBay(t *testing.T) {
	bays := bayPtrs(dualBay(7, EnvironmentOxygen))
	ship := amphibianShip(1, ClassSkeeter)

	sel, err := SelectBay(bays, &ship)

	require.NoError(t, err)
	require.True(t, sel.Found())
	assert.Equal(t, 7, sel.Bay.DockID)
	assert.True(t, sel.NeedsConversion)
}

func TestSelectBay_FirstExactMatchWins(t *testing.T) {
	bays := bayPtrs(
		dualBay(1, EnvironmentAqua),
		oxygenBay(2),
		oxygenBay(3),
	)
	ship := humanShip(1, ClassPersonal)

	sel, err := SelectBay(bays, &ship)

	require.NoError(t, err)
	assert.Equal(t, 2, sel.Bay.DockID)
	assert.False(t, sel.NeedsConversion, "exact match preferred over an earlier convertible bay")
}

func TestSelectBay_LastConvertibleSeenWins(t *testing.T) {
	bays := bayPtrs(
		dualBay(1, EnvironmentAqua),
		dualBay(2, EnvironmentAqua),
		dualBay(3, EnvironmentAqua),
	)
	ship := humanShip(1, ClassPersonal)

	sel, err := SelectBay(bays, &ship)

	require.NoError(t, err)
	assert.Equal(t, 3, sel.Bay.DockID)
	assert.True(t, sel.NeedsConversion)
}

func TestSelectBay_SkipsBaysInUse(t *testing.T) {
	bays := bayPtrs(oxygenBay(1), oxygenBay(2))
	bays[0].InUse = true
	ship := humanShip(1, ClassPersonal)

	sel, err := SelectBay(bays, &ship)
	require.NoError(t, err)
	assert.Equal(t, 2, sel.Bay.DockID)

	bays[1].InUse = true
	sel, err = SelectBay(bays, &ship)
	require.NoError(t, err)
	assert.False(t, sel.Found())
}

func TestSelectBay_NoBayOfTheRightClass(t *testing.T) {
	bay := oxygenBay(1)
	bay.ClassMax = ClassSkeeter
	ship := humanShip(1, ClassDreadnaught)

	sel, err := SelectBay(bayPtrs(bay), &ship)

	require.NoError(t, err)
	assert.False(t, sel.Found())
}

func TestSelectBay_InvalidShip(t *testing.T) {
	bays := bayPtrs(oxygenBay(1))

	badRace := Ship{FedID: 5, Race: "VULCAN", Class: ClassPersonal}
	_, err := SelectBay(bays, &badRace)
	assert.Equal(t, shared.ErrorTagUnrecognizedRace, shared.TagOf(err))

	badClass := Ship{FedID: 6, Race: RaceHuman, Class: 13}
	_, err = SelectBay(bays, &badClass)
	assert.Equal(t, shared.ErrorTagUnrecognizedClass, shared.TagOf(err))
}
