package docking

import (
	"context"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// RosterSource supplies the bay and ship rosters and the optional queue order
type RosterSource interface {
	LoadBays(ctx context.Context) ([]station.Bay, error)
	LoadShips(ctx context.Context) ([]station.Ship, error)
	// LoadOrder returns federation ids in dispatch order; nil means roster order
	LoadOrder(ctx context.Context) ([]int, error)
}

// RunFinalizer is invoked once a run has finished, after it was persisted
type RunFinalizer interface {
	FinishRun(ctx context.Context, summary station.RunSummary) error
}
