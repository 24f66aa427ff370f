package helpers

import (
	"gorm.io/gorm"

	"github.com/andrescamacho/spacestation-go/internal/adapters/persistence"
)

// TestRepositories holds real repository instances backed by the shared test DB
type TestRepositories struct {
	DB     *gorm.DB
	Runs   *persistence.GormStationRunRepository
	Events *persistence.GormServiceEventRepository
}

// NewTestRepositories creates the run history repositories over SharedTestDB
func NewTestRepositories() *TestRepositories {
	db := SharedTestDB

	return &TestRepositories{
		DB:     db,
		Runs:   persistence.NewGormStationRunRepository(db),
		Events: persistence.NewGormServiceEventRepository(db),
	}
}
