package shared

import (
	"fmt"
	"time"
)

// LifecycleStatus is the state of a long-running entity such as a station run
type LifecycleStatus string

const (
	LifecycleStatusPending   LifecycleStatus = "PENDING"
	LifecycleStatusRunning   LifecycleStatus = "RUNNING"
	LifecycleStatusCompleted LifecycleStatus = "COMPLETED"
	LifecycleStatusFailed    LifecycleStatus = "FAILED"
	LifecycleStatusStopped   LifecycleStatus = "STOPPED"
)

// ParseLifecycleStatus accepts a persisted status string
func ParseLifecycleStatus(s string) (LifecycleStatus, error) {
	switch status := LifecycleStatus(s); status {
	case LifecycleStatusPending, LifecycleStatusRunning, LifecycleStatusCompleted,
		LifecycleStatusFailed, LifecycleStatusStopped:
		return status, nil
	default:
		return "", fmt.Errorf("unknown lifecycle status %q", s)
	}
}

// IsTerminal reports whether no transition leaves this status
func (s LifecycleStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// PENDING → RUNNING → COMPLETED | FAILED | STOPPED; PENDING may also fail or stop.
var allowedTransitions = map[LifecycleStatus][]LifecycleStatus{
	LifecycleStatusPending: {LifecycleStatusRunning, LifecycleStatusFailed, LifecycleStatusStopped},
	LifecycleStatusRunning: {LifecycleStatusCompleted, LifecycleStatusFailed, LifecycleStatusStopped},
}

// LifecycleStateMachine tracks status and timestamps for an entity that runs once.
//
// Invariants:
// - transitions follow allowedTransitions
// - startedAt is set on entering RUNNING, stoppedAt on entering a terminal state
type LifecycleStateMachine struct {
	status    LifecycleStatus
	createdAt time.Time
	startedAt *time.Time
	stoppedAt *time.Time
	lastError error
	clock     Clock
}

// NewLifecycleStateMachine creates a state machine in PENDING
func NewLifecycleStateMachine(clock Clock) *LifecycleStateMachine {
	if clock == nil {
		clock = NewRealClock()
	}
	return &LifecycleStateMachine{
		status:    LifecycleStatusPending,
		createdAt: clock.Now(),
		clock:     clock,
	}
}

func (sm *LifecycleStateMachine) Status() LifecycleStatus { return sm.status }
func (sm *LifecycleStateMachine) CreatedAt() time.Time    { return sm.createdAt }
func (sm *LifecycleStateMachine) StartedAt() *time.Time   { return sm.startedAt }
func (sm *LifecycleStateMachine) StoppedAt() *time.Time   { return sm.stoppedAt }
func (sm *LifecycleStateMachine) LastError() error        { return sm.lastError }

func (sm *LifecycleStateMachine) transition(to LifecycleStatus) error {
	for _, next := range allowedTransitions[sm.status] {
		if next == to {
			now := sm.clock.Now()
			sm.status = to
			if to == LifecycleStatusRunning {
				sm.startedAt = &now
			}
			if to.IsTerminal() {
				sm.stoppedAt = &now
			}
			return nil
		}
	}
	return fmt.Errorf("cannot move from %s to %s", sm.status, to)
}

// Start moves PENDING to RUNNING
func (sm *LifecycleStateMachine) Start() error {
	return sm.transition(LifecycleStatusRunning)
}

// Complete moves RUNNING to COMPLETED
func (sm *LifecycleStateMachine) Complete() error {
	return sm.transition(LifecycleStatusCompleted)
}

// Fail records err and moves a non-terminal entity to FAILED
func (sm *LifecycleStateMachine) Fail(err error) error {
	if terr := sm.transition(LifecycleStatusFailed); terr != nil {
		return terr
	}
	sm.lastError = err
	return nil
}

// Stop moves a non-terminal entity to STOPPED
func (sm *LifecycleStateMachine) Stop() error {
	return sm.transition(LifecycleStatusStopped)
}

func (sm *LifecycleStateMachine) IsRunning() bool  { return sm.status == LifecycleStatusRunning }
func (sm *LifecycleStateMachine) IsFinished() bool { return sm.status.IsTerminal() }

// RuntimeDuration is the time spent since Start, frozen once finished
func (sm *LifecycleStateMachine) RuntimeDuration() time.Duration {
	if sm.startedAt == nil {
		return 0
	}
	end := sm.clock.Now()
	if sm.stoppedAt != nil {
		end = *sm.stoppedAt
	}
	return end.Sub(*sm.startedAt)
}

// RecoverFromPersistence restores state read back from storage
func (sm *LifecycleStateMachine) RecoverFromPersistence(
	status LifecycleStatus,
	createdAt time.Time,
	startedAt, stoppedAt *time.Time,
	lastError error,
) {
	sm.status = status
	sm.createdAt = createdAt
	sm.startedAt = startedAt
	sm.stoppedAt = stoppedAt
	sm.lastError = lastError
}
