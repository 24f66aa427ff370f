package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClock_SleepAdvancesTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	require.NoError(t, clock.Sleep(context.Background(), 3*time.Second))
	require.NoError(t, clock.Sleep(context.Background(), 2*time.Second))

	assert.Equal(t, start.Add(5*time.Second), clock.Now())
	assert.Equal(t, 5*time.Second, clock.TotalSlept())
}

func TestMockClock_SleepHonoursCancelledContext(t *testing.T) {
	clock := NewMockClock(time.Time{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := clock.Now()
	err := clock.Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, clock.Now())
}

func TestRealClock_SleepReturnsOnCancel(t *testing.T) {
	clock := NewRealClock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := clock.Sleep(ctx, time.Minute)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestTagOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorTag
	}{
		{"nil", nil, ""},
		{"race", NewUnrecognizedRaceError(7, "VULCAN"), ErrorTagUnrecognizedRace},
		{"class", NewUnrecognizedClassError(7, 13), ErrorTagUnrecognizedClass},
		{"no bay", NewNoCompatibleBayError(7, "Nomad"), ErrorTagNoCompatibleBay},
		{"wrapped race", fmt.Errorf("dispatch: %w", NewUnrecognizedRaceError(7, "X")), ErrorTagUnrecognizedRace},
		{"cancelled", fmt.Errorf("stage: %w", context.Canceled), ErrorTagCancelled},
		{"deadline", context.DeadlineExceeded, ErrorTagCancelled},
		{"other", errors.New("boom"), ErrorTagInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TagOf(tt.err))
		})
	}
}

func TestBayOwnershipError_Message(t *testing.T) {
	err := NewBayOwnershipError(3, 10, 20)

	assert.Equal(t, "bay 3 is held by ship 20, not ship 10", err.Error())
	assert.Equal(t, 3, err.DockID)
}

func TestLifecycle_HappyPath(t *testing.T) {
	clock := NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sm := NewLifecycleStateMachine(clock)
	assert.Equal(t, LifecycleStatusPending, sm.Status())

	require.NoError(t, sm.Start())
	assert.True(t, sm.IsRunning())

	clock.Advance(90 * time.Second)
	require.NoError(t, sm.Complete())

	assert.True(t, sm.IsFinished())
	assert.Equal(t, 90*time.Second, sm.RuntimeDuration())
	require.NotNil(t, sm.StoppedAt())
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	sm := NewLifecycleStateMachine(NewMockClock(time.Time{}))

	assert.Error(t, sm.Complete(), "cannot complete before starting")

	require.NoError(t, sm.Start())
	require.NoError(t, sm.Stop())

	assert.Error(t, sm.Start())
	assert.Error(t, sm.Fail(errors.New("late")))
	assert.Nil(t, sm.LastError())
}

func TestLifecycle_FailRecordsError(t *testing.T) {
	sm := NewLifecycleStateMachine(NewMockClock(time.Time{}))
	cause := errors.New("roster unreadable")

	require.NoError(t, sm.Fail(cause))

	assert.Equal(t, LifecycleStatusFailed, sm.Status())
	assert.Equal(t, cause, sm.LastError())
	assert.Zero(t, sm.RuntimeDuration())
}

func TestParseLifecycleStatus(t *testing.T) {
	s, err := ParseLifecycleStatus("STOPPED")
	require.NoError(t, err)
	assert.Equal(t, LifecycleStatusStopped, s)

	_, err = ParseLifecycleStatus("paused")
	assert.Error(t, err)
}
