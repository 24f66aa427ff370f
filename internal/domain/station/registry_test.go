package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

func TestShipRegistry_DockUndock(t *testing.T) {
	reg, err := NewShipRegistry([]Ship{humanShip(1, ClassPersonal), humanShip(2, ClassSkeeter)})
	require.NoError(t, err)

	require.NoError(t, reg.MarkDocked(1, 4))
	ship, ok := reg.Get(1)
	require.True(t, ok)
	assert.True(t, ship.Docked)
	assert.Equal(t, 4, ship.AssignedBayID)
	assert.Equal(t, []int{1}, reg.DockedAt(4))

	changed, err := reg.MarkUndocked(1, 4, true)
	require.NoError(t, err)
	assert.True(t, changed)

	ship, _ = reg.Get(1)
	assert.False(t, ship.Docked)
	assert.Zero(t, ship.AssignedBayID)
	assert.True(t, ship.ServiceComplete)

	changed, err = reg.MarkUndocked(1, 4, true)
	require.NoError(t, err)
	assert.False(t, changed, "second undock is a no-op")
}

func TestShipRegistry_UndockAtWrongBayIsNoop(t *testing.T) {
	reg, err := NewShipRegistry([]Ship{humanShip(1, ClassPersonal)})
	require.NoError(t, err)
	require.NoError(t, reg.MarkDocked(1, 4))

	changed, err := reg.MarkUndocked(1, 5, true)

	require.NoError(t, err)
	assert.False(t, changed)
	ship, _ := reg.Get(1)
	assert.Equal(t, 4, ship.AssignedBayID)
}

func TestShipRegistry_Errors(t *testing.T) {
	_, err := NewShipRegistry([]Ship{humanShip(1, ClassPersonal), humanShip(1, ClassPersonal)})
	var dup *shared.DuplicateShipError
	assert.ErrorAs(t, err, &dup)

	reg, err := NewShipRegistry(nil)
	require.NoError(t, err)

	assert.Error(t, reg.Add(Ship{FedID: 0}))

	var notFound *shared.ShipNotFoundError
	assert.ErrorAs(t, reg.MarkDocked(3, 1), &notFound)
}

func TestShipRegistry_AddClearsRuntimeState(t *testing.T) {
	ship := humanShip(1, ClassPersonal)
	ship.Docked = true
	ship.AssignedBayID = 3

	reg, err := NewShipRegistry([]Ship{ship})
	require.NoError(t, err)

	stored, _ := reg.Get(1)
	assert.False(t, stored.Docked)
	assert.Zero(t, stored.AssignedBayID)
}

func TestShipRegistry_UpdateAndAllOrder(t *testing.T) {
	reg, err := NewShipRegistry([]Ship{humanShip(3, ClassPersonal), humanShip(1, ClassPersonal)})
	require.NoError(t, err)

	require.NoError(t, reg.Update(1, func(s *Ship) { s.FuelOnBoard = 42 }))

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, 3, all[0].FedID)
	assert.Equal(t, 42, all[1].FuelOnBoard)
}
