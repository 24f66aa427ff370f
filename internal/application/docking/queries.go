package docking

import (
	"context"
	"fmt"

	"github.com/andrescamacho/spacestation-go/internal/application/mediator"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// CheckRosterQuery validates the rosters without running the station
type CheckRosterQuery struct{}

// CheckRosterResponse reports the roster sizes and every unserviceable ship
type CheckRosterResponse struct {
	Bays     []station.Bay
	Ships    int
	Problems []station.RosterProblem
}

type CheckRosterHandler struct {
	roster RosterSource
}

func NewCheckRosterHandler(roster RosterSource) *CheckRosterHandler {
	return &CheckRosterHandler{roster: roster}
}

func (h *CheckRosterHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*CheckRosterQuery); !ok {
		return nil, fmt.Errorf("invalid request type: expected *CheckRosterQuery, got %T", request)
	}

	bays, ships, err := loadRosters(ctx, h.roster)
	if err != nil {
		return nil, err
	}
	catalog, err := station.NewBayCatalog(bays)
	if err != nil {
		return nil, fmt.Errorf("bay roster: %w", err)
	}
	registry, err := station.NewShipRegistry(ships)
	if err != nil {
		return nil, fmt.Errorf("ship roster: %w", err)
	}
	order, err := h.roster.LoadOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if _, err := buildQueue(registry, order); err != nil {
		return nil, err
	}

	return &CheckRosterResponse{
		Bays:     catalog.Snapshot(),
		Ships:    len(ships),
		Problems: station.CheckRoster(bays, ships),
	}, nil
}

// ListRunsQuery lists the most recent runs, newest first
type ListRunsQuery struct {
	Limit int
}

type ListRunsResponse struct {
	Runs []station.RunSummary
}

type ListRunsHandler struct {
	runs station.RunRepository
}

func NewListRunsHandler(runs station.RunRepository) *ListRunsHandler {
	return &ListRunsHandler{runs: runs}
}

func (h *ListRunsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListRunsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRunsQuery, got %T", request)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	runs, err := h.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	resp := &ListRunsResponse{Runs: make([]station.RunSummary, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, run.Summary())
	}
	return resp, nil
}

// GetRunEventsQuery returns the event stream of a run, optionally for one ship
type GetRunEventsQuery struct {
	RunID  string
	ShipID int
	Limit  int
}

type GetRunEventsResponse struct {
	Run      station.RunSummary
	Outcomes []station.ServiceOutcome
	Events   []station.ServiceEvent
}

type GetRunEventsHandler struct {
	runs   station.RunRepository
	events station.EventRepository
}

func NewGetRunEventsHandler(runs station.RunRepository, events station.EventRepository) *GetRunEventsHandler {
	return &GetRunEventsHandler{runs: runs, events: events}
}

func (h *GetRunEventsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetRunEventsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetRunEventsQuery, got %T", request)
	}
	if query.RunID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	run, err := h.runs.FindRun(ctx, query.RunID)
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	events, err := h.events.FindEvents(ctx, query.RunID, query.ShipID, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	outcomes := run.Outcomes()
	if query.ShipID != 0 {
		filtered := outcomes[:0]
		for _, o := range outcomes {
			if o.ShipID == query.ShipID {
				filtered = append(filtered, o)
			}
		}
		outcomes = filtered
	}

	return &GetRunEventsResponse{Run: run.Summary(), Outcomes: outcomes, Events: events}, nil
}
