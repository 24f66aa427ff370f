package station

import (
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// RunMode selects what the dispatch loop does when the queue is empty
type RunMode string

const (
	// RunModeBatch ends the run once the initial queue is drained
	RunModeBatch RunMode = "batch"
	// RunModeContinuous waits for more ships until the queue is closed
	RunModeContinuous RunMode = "continuous"
)

// StationRun is one execution of the dispatch loop over a roster.
//
// Outcomes are recorded from the dispatch loop and from the completion
// path, so the run is guarded by a mutex. Thread-safe.
type StationRun struct {
	mu sync.Mutex

	id          string
	stationName string
	mode        RunMode
	totalShips  int
	lifecycle   *shared.LifecycleStateMachine
	outcomes    map[int]ServiceOutcome
}

// NewStationRun creates a PENDING run
func NewStationRun(id, stationName string, mode RunMode, totalShips int, clock shared.Clock) *StationRun {
	return &StationRun{
		id:          id,
		stationName: stationName,
		mode:        mode,
		totalShips:  totalShips,
		lifecycle:   shared.NewLifecycleStateMachine(clock),
		outcomes:    make(map[int]ServiceOutcome),
	}
}

// ReconstructStationRun rebuilds a run read back from storage
func ReconstructStationRun(
	id, stationName string,
	mode RunMode,
	totalShips int,
	status shared.LifecycleStatus,
	createdAt time.Time,
	startedAt, stoppedAt *time.Time,
	lastError error,
	outcomes []ServiceOutcome,
) *StationRun {
	run := NewStationRun(id, stationName, mode, totalShips, nil)
	run.lifecycle.RecoverFromPersistence(status, createdAt, startedAt, stoppedAt, lastError)
	for _, o := range outcomes {
		run.outcomes[o.ShipID] = o
	}
	return run
}

func (r *StationRun) ID() string          { return r.id }
func (r *StationRun) StationName() string { return r.stationName }
func (r *StationRun) Mode() RunMode       { return r.mode }

func (r *StationRun) TotalShips() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalShips
}

// ShipArrived counts a ship queued after the run started
func (r *StationRun) ShipArrived() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalShips++
}

func (r *StationRun) Status() shared.LifecycleStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.Status()
}

func (r *StationRun) CreatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.CreatedAt()
}

func (r *StationRun) StartedAt() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.StartedAt()
}

func (r *StationRun) StoppedAt() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.StoppedAt()
}

func (r *StationRun) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.LastError()
}

func (r *StationRun) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.RuntimeDuration()
}

// Start moves the run to RUNNING
func (r *StationRun) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lifecycle.Start()
}

// Finish closes the run: cancellation stops it, any other error fails it
func (r *StationRun) Finish(err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case err == nil:
		return r.lifecycle.Complete()
	case shared.TagOf(err) == shared.ErrorTagCancelled:
		return r.lifecycle.Stop()
	default:
		return r.lifecycle.Fail(err)
	}
}

// RecordOutcome stores the terminal outcome for a ship. The first outcome
// recorded for a ship wins; later ones are ignored and reported as false.
func (r *StationRun) RecordOutcome(o ServiceOutcome) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.outcomes[o.ShipID]; exists {
		return false
	}
	r.outcomes[o.ShipID] = o
	return true
}

// Outcomes returns the recorded outcomes in dispatch order
func (r *StationRun) Outcomes() []ServiceOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ServiceOutcome, 0, len(r.outcomes))
	for _, o := range r.outcomes {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ShipID < out[j].ShipID
	})
	return out
}

// RunSummary is the tally reported at the end of a run
type RunSummary struct {
	RunID     string
	Station   string
	Status    shared.LifecycleStatus
	Total     int
	Serviced  int
	Failed    int
	Cancelled int
	Duration  time.Duration
}

// Summary tallies outcomes by status
func (r *StationRun) Summary() RunSummary {
	s := RunSummary{
		RunID:    r.id,
		Station:  r.stationName,
		Status:   r.Status(),
		Total:    r.TotalShips(),
		Duration: r.Duration(),
	}
	for _, o := range r.Outcomes() {
		switch o.Status {
		case OutcomeSuccess:
			s.Serviced++
		case OutcomeFailed:
			s.Failed++
		case OutcomeCancelled:
			s.Cancelled++
		}
	}
	return s
}
