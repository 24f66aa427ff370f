package station

import (
	"errors"
	"time"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// OutcomeStatus is the terminal state of one ship's visit
type OutcomeStatus string

const (
	OutcomeSuccess   OutcomeStatus = "success"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeCancelled OutcomeStatus = "cancelled"
)

// Dispatch phases a ship can fail in before its service starts
const (
	StageAllocation    Stage = "allocation"
	StageConvertingBay Stage = "converting_bay"
	StagePreparingBay  Stage = "preparing_bay"
	StageDocking       Stage = "docking"
)

// StageError attaches the stage a ship was in when err stopped it
type StageError struct {
	Stage Stage
	Err   error
}

// AtStage wraps err with stage. A nil err stays nil and an error that
// already names a stage keeps it.
func AtStage(stage Stage, err error) error {
	if err == nil || StageOf(err) != "" {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// Error keeps the wrapped message; the stage travels as data
func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) FailedStage() Stage {
	return e.Stage
}

// StageOf returns the stage recorded on err, or "" when none is
func StageOf(err error) Stage {
	var staged interface{ FailedStage() Stage }
	if errors.As(err, &staged) {
		return staged.FailedStage()
	}
	return ""
}

// ServiceOutcome is reported once per dispatched ship. Stage names where a
// failed or cancelled ship stopped.
type ServiceOutcome struct {
	Sequence    int
	ShipID      int
	ShipName    string
	DockID      int
	Status      OutcomeStatus
	Stage       Stage
	ErrorTag    shared.ErrorTag
	Reason      string
	CompletedAt time.Time
}

// NewFailedOutcome builds the outcome for a ship whose dispatch or service
// ended with err
func NewFailedOutcome(seq int, ship *Ship, dockID int, err error, at time.Time) ServiceOutcome {
	tag := shared.TagOf(err)
	status := OutcomeFailed
	if tag == shared.ErrorTagCancelled {
		status = OutcomeCancelled
	}
	return ServiceOutcome{
		Sequence:    seq,
		ShipID:      ship.FedID,
		ShipName:    ship.Name,
		DockID:      dockID,
		Status:      status,
		Stage:       StageOf(err),
		ErrorTag:    tag,
		Reason:      err.Error(),
		CompletedAt: at,
	}
}

// Succeeded reports whether the ship was fully serviced
func (o ServiceOutcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}
