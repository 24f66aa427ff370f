package station

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// EventKind names a point in a ship's trip through the station
type EventKind string

const (
	EventRunStarted      EventKind = "run_started"
	EventRunFinished     EventKind = "run_finished"
	EventDequeued        EventKind = "dequeued"
	EventBayWaiting      EventKind = "bay_waiting"
	EventBaySelected     EventKind = "bay_selected"
	EventBayConverting   EventKind = "bay_converting"
	EventBayPreparing    EventKind = "bay_preparing"
	EventBayReady        EventKind = "bay_ready"
	EventDocking         EventKind = "docking"
	EventDocked          EventKind = "docked"
	EventStageStarted    EventKind = "stage_started"
	EventStageCompleted  EventKind = "stage_completed"
	EventStageSkipped    EventKind = "stage_skipped"
	EventStageFailed     EventKind = "stage_failed"
	EventServiceComplete EventKind = "service_complete"
	EventUndocked        EventKind = "undocked"
	EventBayReleased     EventKind = "bay_released"
	EventShipFailed      EventKind = "ship_failed"
)

// Log levels attached to events, matching the persisted log level column
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// ServiceEvent is one timestamped entry of the station's event stream.
// Sequence is the ship's dispatch index (1-based), 0 for run-level events.
type ServiceEvent struct {
	Timestamp time.Time
	Kind      EventKind
	Sequence  int
	ShipID    int
	ShipName  string
	ShipClass ShipClass
	DockID    int
	Stage     Stage
	Cycles    int
	ErrorTag  shared.ErrorTag
	Message   string
}

// Level derives the log level from the event kind
func (e ServiceEvent) Level() string {
	switch e.Kind {
	case EventShipFailed, EventStageFailed:
		return LevelError
	case EventBayWaiting:
		return LevelWarning
	default:
		return LevelInfo
	}
}

// IsTerminal reports whether no further events follow for this ship
func (e ServiceEvent) IsTerminal() bool {
	return e.Kind == EventBayReleased || e.Kind == EventShipFailed
}

func (e ServiceEvent) String() string {
	return fmt.Sprintf("%s %s ship=%d bay=%d stage=%s: %s",
		e.Timestamp.Format(time.RFC3339), e.Kind, e.ShipID, e.DockID, e.Stage, e.Message)
}

// EventSink consumes the event stream. Implementations must be safe for
// concurrent use: the dispatch loop and every worker publish.
type EventSink interface {
	Publish(ctx context.Context, event ServiceEvent)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(ctx context.Context, event ServiceEvent)

func (f EventSinkFunc) Publish(ctx context.Context, event ServiceEvent) {
	f(ctx, event)
}

// MultiSink fans an event out to several sinks in order
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, event ServiceEvent) {
	for _, sink := range m {
		if sink != nil {
			sink.Publish(ctx, event)
		}
	}
}

// NopSink discards events
type NopSink struct{}

func (NopSink) Publish(context.Context, ServiceEvent) {}

// EventRecorder keeps every event in memory, in publish order.
// Thread-safe.
type EventRecorder struct {
	mu     sync.Mutex
	events []ServiceEvent
}

// NewEventRecorder creates an empty recorder
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Publish(_ context.Context, event ServiceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *EventRecorder) Events() []ServiceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ServiceEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events matching pred
func (r *EventRecorder) Filter(pred func(ServiceEvent) bool) []ServiceEvent {
	var out []ServiceEvent
	for _, e := range r.Events() {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// OfKind returns recorded events of kind in publish order
func (r *EventRecorder) OfKind(kind EventKind) []ServiceEvent {
	return r.Filter(func(e ServiceEvent) bool { return e.Kind == kind })
}
