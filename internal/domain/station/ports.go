package station

import "context"

// RunRepository persists station runs and their per-ship outcomes
type RunRepository interface {
	SaveRun(ctx context.Context, run *StationRun) error
	FindRun(ctx context.Context, runID string) (*StationRun, error)
	ListRuns(ctx context.Context, limit int) ([]*StationRun, error)
}

// EventRepository persists the event stream of a run
type EventRepository interface {
	AppendEvent(ctx context.Context, runID string, event ServiceEvent) error
	// FindEvents returns a run's events in publish order. shipID 0 means all ships.
	FindEvents(ctx context.Context, runID string, shipID int, limit int) ([]ServiceEvent, error)
}
