package docking

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// publisher stamps events with the clock before handing them to the sink
type publisher struct {
	sink  station.EventSink
	clock shared.Clock
}

func (p publisher) ship(ctx context.Context, kind station.EventKind, seq int, ship *station.Ship, dockID int, format string, args ...interface{}) station.ServiceEvent {
	e := station.ServiceEvent{
		Timestamp: p.clock.Now(),
		Kind:      kind,
		Sequence:  seq,
		ShipID:    ship.FedID,
		ShipName:  ship.Name,
		ShipClass: ship.Class,
		DockID:    dockID,
		Message:   fmt.Sprintf(format, args...),
	}
	p.sink.Publish(ctx, e)
	return e
}

func (p publisher) stage(ctx context.Context, kind station.EventKind, seq int, ship *station.Ship, dockID int, stage station.Stage, cycles int, err error) {
	e := station.ServiceEvent{
		Timestamp: p.clock.Now(),
		Kind:      kind,
		Sequence:  seq,
		ShipID:    ship.FedID,
		ShipName:  ship.Name,
		ShipClass: ship.Class,
		DockID:    dockID,
		Stage:     stage,
		Cycles:    cycles,
	}
	switch kind {
	case station.EventStageStarted:
		e.Message = fmt.Sprintf("%s started, %d cycles", stage, cycles)
	case station.EventStageCompleted:
		e.Message = fmt.Sprintf("%s complete", stage)
	case station.EventStageSkipped:
		e.Message = fmt.Sprintf("%s not needed", stage)
	case station.EventStageFailed:
		e.ErrorTag = shared.TagOf(err)
		e.Message = fmt.Sprintf("%s skipped: %v", stage, err)
	}
	p.sink.Publish(ctx, e)
}

func (p publisher) failure(ctx context.Context, seq int, ship *station.Ship, dockID int, err error) {
	p.sink.Publish(ctx, station.ServiceEvent{
		Timestamp: p.clock.Now(),
		Kind:      station.EventShipFailed,
		Sequence:  seq,
		ShipID:    ship.FedID,
		ShipName:  ship.Name,
		ShipClass: ship.Class,
		DockID:    dockID,
		Stage:     station.StageOf(err),
		ErrorTag:  shared.TagOf(err),
		Message:   err.Error(),
	})
}

func (p publisher) run(ctx context.Context, kind station.EventKind, format string, args ...interface{}) {
	p.sink.Publish(ctx, station.ServiceEvent{
		Timestamp: p.clock.Now(),
		Kind:      kind,
		Message:   fmt.Sprintf(format, args...),
	})
}
