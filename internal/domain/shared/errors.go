package shared

import (
	"context"
	"errors"
	"fmt"
)

// ErrorTag classifies a failure for service outcomes and the event stream
type ErrorTag string

const (
	ErrorTagUnrecognizedRace  ErrorTag = "unrecognized-race"
	ErrorTagUnrecognizedClass ErrorTag = "unrecognized-class"
	ErrorTagNoCompatibleBay   ErrorTag = "no-compatible-bay"
	ErrorTagCancelled         ErrorTag = "cancelled"
	ErrorTagInternal          ErrorTag = "internal"
)

// TagOf classifies err into the outcome error tag reported for a ship
func TagOf(err error) ErrorTag {
	var (
		raceErr  *UnrecognizedRaceError
		classErr *UnrecognizedClassError
		bayErr   *NoCompatibleBayError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &raceErr):
		return ErrorTagUnrecognizedRace
	case errors.As(err, &classErr):
		return ErrorTagUnrecognizedClass
	case errors.As(err, &bayErr):
		return ErrorTagNoCompatibleBay
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorTagCancelled
	default:
		return ErrorTagInternal
	}
}

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Ship configuration errors

type ShipError struct {
	*DomainError
	ShipID int
}

func NewShipError(shipID int, message string) *ShipError {
	return &ShipError{DomainError: &DomainError{Message: message}, ShipID: shipID}
}

type UnrecognizedRaceError struct {
	*ShipError
	Race string
}

func NewUnrecognizedRaceError(shipID int, race string) *UnrecognizedRaceError {
	return &UnrecognizedRaceError{
		ShipError: NewShipError(shipID, fmt.Sprintf("ship %d: race %q is not recognized", shipID, race)),
		Race:      race,
	}
}

type UnrecognizedClassError struct {
	*ShipError
	Class int
}

func NewUnrecognizedClassError(shipID, class int) *UnrecognizedClassError {
	return &UnrecognizedClassError{
		ShipError: NewShipError(shipID, fmt.Sprintf("ship %d: class %d is not recognized", shipID, class)),
		Class:     class,
	}
}

type NoCompatibleBayError struct {
	*ShipError
}

func NewNoCompatibleBayError(shipID int, shipName string) *NoCompatibleBayError {
	return &NoCompatibleBayError{
		ShipError: NewShipError(shipID, fmt.Sprintf("ship %d (%s): no bay in the catalog can ever host it", shipID, shipName)),
	}
}

type ShipNotFoundError struct {
	*ShipError
}

func NewShipNotFoundError(shipID int) *ShipNotFoundError {
	return &ShipNotFoundError{ShipError: NewShipError(shipID, fmt.Sprintf("ship %d not found", shipID))}
}

type DuplicateShipError struct {
	*ShipError
}

func NewDuplicateShipError(shipID int) *DuplicateShipError {
	return &DuplicateShipError{ShipError: NewShipError(shipID, fmt.Sprintf("ship %d is already present", shipID))}
}

// Bay errors

type BayError struct {
	*DomainError
	DockID int
}

func NewBayError(dockID int, message string) *BayError {
	return &BayError{DomainError: &DomainError{Message: message}, DockID: dockID}
}

type BayNotFoundError struct {
	*BayError
}

func NewBayNotFoundError(dockID int) *BayNotFoundError {
	return &BayNotFoundError{BayError: NewBayError(dockID, fmt.Sprintf("bay %d not found", dockID))}
}

// BayOwnershipError is returned when a caller touches a bay held by another ship
type BayOwnershipError struct {
	*BayError
	ShipID     int
	OccupantID int
}

func NewBayOwnershipError(dockID, shipID, occupantID int) *BayOwnershipError {
	return &BayOwnershipError{
		BayError:   NewBayError(dockID, fmt.Sprintf("bay %d is held by ship %d, not ship %d", dockID, occupantID, shipID)),
		ShipID:     shipID,
		OccupantID: occupantID,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
