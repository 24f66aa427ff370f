package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// GormServiceEventRepository implements station.EventRepository using GORM
type GormServiceEventRepository struct {
	db *gorm.DB
}

// NewGormServiceEventRepository creates a new service event repository
func NewGormServiceEventRepository(db *gorm.DB) *GormServiceEventRepository {
	return &GormServiceEventRepository{db: db}
}

// AppendEvent writes one event row for runID
func (r *GormServiceEventRepository) AppendEvent(ctx context.Context, runID string, e station.ServiceEvent) error {
	model := &ServiceEventModel{
		RunID:     runID,
		ShipID:    e.ShipID,
		Timestamp: e.Timestamp,
		Level:     e.Level(),
		Kind:      string(e.Kind),
		Sequence:  e.Sequence,
		ShipName:  e.ShipName,
		ShipClass: int(e.ShipClass),
		DockID:    e.DockID,
		Stage:     string(e.Stage),
		Cycles:    e.Cycles,
		ErrorTag:  string(e.ErrorTag),
		Message:   e.Message,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// FindEvents returns events in insertion order. shipID 0 selects every ship;
// limit <= 0 returns everything.
func (r *GormServiceEventRepository) FindEvents(ctx context.Context, runID string, shipID int, limit int) ([]station.ServiceEvent, error) {
	var models []ServiceEventModel

	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if shipID != 0 {
		query = query.Where("ship_id = ?", shipID)
	}
	query = query.Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}

	events := make([]station.ServiceEvent, len(models))
	for i, m := range models {
		events[i] = station.ServiceEvent{
			Timestamp: m.Timestamp,
			Kind:      station.EventKind(m.Kind),
			Sequence:  m.Sequence,
			ShipID:    m.ShipID,
			ShipName:  m.ShipName,
			ShipClass: station.ShipClass(m.ShipClass),
			DockID:    m.DockID,
			Stage:     station.Stage(m.Stage),
			Cycles:    m.Cycles,
			ErrorTag:  shared.ErrorTag(m.ErrorTag),
			Message:   m.Message,
		}
	}
	return events, nil
}
