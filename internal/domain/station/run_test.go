package station

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

func TestStationRun_Lifecycle(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	run := NewStationRun("deep-space-9-abcd1234", "Deep Space 9", RunModeBatch, 3, clock)

	require.NoError(t, run.Start())
	clock.Advance(time.Minute)
	require.NoError(t, run.Finish(nil))

	assert.Equal(t, shared.LifecycleStatusCompleted, run.Status())
	assert.Equal(t, time.Minute, run.Duration())
}

func TestStationRun_FinishClassifiesErrors(t *testing.T) {
	cancelled := NewStationRun("a", "s", RunModeBatch, 0, shared.NewMockClock(time.Time{}))
	require.NoError(t, cancelled.Start())
	require.NoError(t, cancelled.Finish(fmt.Errorf("dispatch: %w", context.Canceled)))
	assert.Equal(t, shared.LifecycleStatusStopped, cancelled.Status())

	failed := NewStationRun("b", "s", RunModeBatch, 0, shared.NewMockClock(time.Time{}))
	require.NoError(t, failed.Start())
	require.NoError(t, failed.Finish(errors.New("catalog corrupted")))
	assert.Equal(t, shared.LifecycleStatusFailed, failed.Status())
	assert.EqualError(t, failed.LastError(), "catalog corrupted")
}

func TestStationRun_OutcomesFirstWinsAndSummary(t *testing.T) {
	run := NewStationRun("r", "s", RunModeBatch, 4, shared.NewMockClock(time.Time{}))

	assert.True(t, run.RecordOutcome(ServiceOutcome{Sequence: 2, ShipID: 20, Status: OutcomeSuccess}))
	assert.True(t, run.RecordOutcome(ServiceOutcome{Sequence: 1, ShipID: 10, Status: OutcomeFailed}))
	assert.True(t, run.RecordOutcome(ServiceOutcome{Sequence: 3, ShipID: 30, Status: OutcomeCancelled}))
	assert.False(t, run.RecordOutcome(ServiceOutcome{Sequence: 2, ShipID: 20, Status: OutcomeFailed}))

	outcomes := run.Outcomes()
	require.Len(t, outcomes, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{outcomes[0].ShipID, outcomes[1].ShipID, outcomes[2].ShipID})
	assert.Equal(t, OutcomeSuccess, outcomes[1].Status)

	summary := run.Summary()
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Serviced)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Cancelled)
}

func TestNewFailedOutcome(t *testing.T) {
	ship := Ship{FedID: 8, Name: "Nomad"}

	o := NewFailedOutcome(4, &ship, 0, shared.NewNoCompatibleBayError(8, "Nomad"), time.Time{})
	assert.Equal(t, OutcomeFailed, o.Status)
	assert.Equal(t, shared.ErrorTagNoCompatibleBay, o.ErrorTag)
	assert.False(t, o.Succeeded())

	assert.Empty(t, o.Stage)

	o = NewFailedOutcome(4, &ship, 2, context.Canceled, time.Time{})
	assert.Equal(t, OutcomeCancelled, o.Status)

	o = NewFailedOutcome(4, &ship, 2, AtStage(StageDocking, fmt.Errorf("docking at bay 2: %w", context.Canceled)), time.Time{})
	assert.Equal(t, OutcomeCancelled, o.Status)
	assert.Equal(t, StageDocking, o.Stage)
	assert.Equal(t, "docking at bay 2: context canceled", o.Reason)
}

func TestAtStage(t *testing.T) {
	base := shared.NewUnrecognizedRaceError(3, "BORG")

	err := AtStage(StageAllocation, base)
	assert.Equal(t, StageAllocation, StageOf(err))
	assert.Equal(t, base.Error(), err.Error())
	assert.Equal(t, shared.ErrorTagUnrecognizedRace, shared.TagOf(err))

	// the innermost stage wins
	outer := AtStage(StageDocking, fmt.Errorf("wrapped: %w", err))
	assert.Equal(t, StageAllocation, StageOf(outer))

	assert.NoError(t, AtStage(StageRepair, nil))
	assert.Empty(t, StageOf(base))
	assert.Empty(t, StageOf(nil))
}

func TestEventRecorderAndMultiSink(t *testing.T) {
	a, b := NewEventRecorder(), NewEventRecorder()
	sink := MultiSink{a, nil, b, NopSink{}}

	sink.Publish(context.Background(), ServiceEvent{Kind: EventDocked, ShipID: 1})
	sink.Publish(context.Background(), ServiceEvent{Kind: EventShipFailed, ShipID: 2})

	assert.Len(t, a.Events(), 2)
	assert.Len(t, b.OfKind(EventShipFailed), 1)
	assert.Equal(t, LevelError, b.OfKind(EventShipFailed)[0].Level())
	assert.True(t, b.OfKind(EventShipFailed)[0].IsTerminal())
	assert.Equal(t, LevelWarning, ServiceEvent{Kind: EventBayWaiting}.Level())
}
