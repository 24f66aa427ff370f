package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// ErrRunNotFound is returned when no run matches the requested id
var ErrRunNotFound = errors.New("station run not found")

// GormStationRunRepository implements station.RunRepository using GORM
type GormStationRunRepository struct {
	db *gorm.DB
}

// NewGormStationRunRepository creates a new GORM station run repository
func NewGormStationRunRepository(db *gorm.DB) *GormStationRunRepository {
	return &GormStationRunRepository{db: db}
}

// SaveRun upserts the run row and every outcome recorded so far
func (r *GormStationRunRepository) SaveRun(ctx context.Context, run *station.StationRun) error {
	model := runToModel(run)
	outcomes := outcomesToModels(run.ID(), run.Outcomes())

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		if len(outcomes) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}, {Name: "ship_id"}},
			UpdateAll: true,
		}).Create(&outcomes).Error; err != nil {
			return fmt.Errorf("failed to save outcomes: %w", err)
		}
		return nil
	})
}

// FindRun retrieves a run with its outcomes
func (r *GormStationRunRepository) FindRun(ctx context.Context, runID string) (*station.StationRun, error) {
	var model StationRunModel
	err := r.db.WithContext(ctx).Where("id = ?", runID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}

	outcomes, err := r.findOutcomes(ctx, []string{model.ID})
	if err != nil {
		return nil, err
	}
	return modelToRun(&model, outcomes[model.ID])
}

// ListRuns returns the most recent runs, newest first
func (r *GormStationRunRepository) ListRuns(ctx context.Context, limit int) ([]*station.StationRun, error) {
	var models []StationRunModel
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	outcomes, err := r.findOutcomes(ctx, ids)
	if err != nil {
		return nil, err
	}

	runs := make([]*station.StationRun, 0, len(models))
	for i := range models {
		run, err := modelToRun(&models[i], outcomes[models[i].ID])
		if err != nil {
			continue // Skip rows written by an incompatible version
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *GormStationRunRepository) findOutcomes(ctx context.Context, runIDs []string) (map[string][]station.ServiceOutcome, error) {
	out := make(map[string][]station.ServiceOutcome, len(runIDs))
	if len(runIDs) == 0 {
		return out, nil
	}

	var models []ServiceOutcomeModel
	if err := r.db.WithContext(ctx).
		Where("run_id IN ?", runIDs).
		Order("sequence").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load outcomes: %w", err)
	}

	for _, m := range models {
		out[m.RunID] = append(out[m.RunID], station.ServiceOutcome{
			Sequence:    m.Sequence,
			ShipID:      m.ShipID,
			ShipName:    m.ShipName,
			DockID:      m.DockID,
			Status:      station.OutcomeStatus(m.Status),
			Stage:       station.Stage(m.Stage),
			ErrorTag:    shared.ErrorTag(m.ErrorTag),
			Reason:      m.Reason,
			CompletedAt: m.CompletedAt,
		})
	}
	return out, nil
}

func runToModel(run *station.StationRun) *StationRunModel {
	model := &StationRunModel{
		ID:          run.ID(),
		StationName: run.StationName(),
		Mode:        string(run.Mode()),
		Status:      string(run.Status()),
		TotalShips:  run.TotalShips(),
		CreatedAt:   run.CreatedAt(),
		StartedAt:   run.StartedAt(),
		StoppedAt:   run.StoppedAt(),
	}
	if err := run.LastError(); err != nil {
		model.LastError = err.Error()
	}
	return model
}

func outcomesToModels(runID string, outcomes []station.ServiceOutcome) []ServiceOutcomeModel {
	models := make([]ServiceOutcomeModel, len(outcomes))
	for i, o := range outcomes {
		models[i] = ServiceOutcomeModel{
			RunID:       runID,
			ShipID:      o.ShipID,
			Sequence:    o.Sequence,
			ShipName:    o.ShipName,
			DockID:      o.DockID,
			Status:      string(o.Status),
			Stage:       string(o.Stage),
			ErrorTag:    string(o.ErrorTag),
			Reason:      o.Reason,
			CompletedAt: o.CompletedAt,
		}
	}
	return models
}

func modelToRun(model *StationRunModel, outcomes []station.ServiceOutcome) (*station.StationRun, error) {
	status, err := shared.ParseLifecycleStatus(model.Status)
	if err != nil {
		return nil, err
	}

	var lastErr error
	if model.LastError != "" {
		lastErr = errors.New(model.LastError)
	}

	return station.ReconstructStationRun(
		model.ID,
		model.StationName,
		station.RunMode(model.Mode),
		model.TotalShips,
		status,
		model.CreatedAt,
		model.StartedAt,
		model.StoppedAt,
		lastErr,
		outcomes,
	), nil
}
