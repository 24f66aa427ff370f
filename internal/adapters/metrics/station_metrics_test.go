package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacestation-go/internal/application/mediator"
	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

func TestStationMetricsCollector_CountsEventStream(t *testing.T) {
	c, err := NewStationMetricsCollector("DS9", "", nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, e := range []station.ServiceEvent{
		{Kind: station.EventDequeued, ShipID: 1},
		{Kind: station.EventDequeued, ShipID: 2},
		{Kind: station.EventBaySelected, ShipID: 1, DockID: 1},
		{Kind: station.EventBayConverting, ShipID: 1, DockID: 1},
		{Kind: station.EventBayWaiting, ShipID: 2},
		{Kind: station.EventStageCompleted, ShipID: 1, Stage: station.StageRefuel, Cycles: 4},
		{Kind: station.EventStageFailed, ShipID: 1, Stage: station.StageRepair},
		{Kind: station.EventServiceComplete, ShipID: 1, DockID: 1},
		{Kind: station.EventBayReleased, ShipID: 1, DockID: 1},
		{Kind: station.EventShipFailed, ShipID: 2, ErrorTag: shared.ErrorTagNoCompatibleBay},
	} {
		c.Publish(ctx, e)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.shipsDispatched))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.shipsServiced))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.shipsFailed.WithLabelValues("no-compatible-bay")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.baysInUse))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.bayConversions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.bayWaits))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stagesFailed.WithLabelValues("repair")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.stageCycles))
}

func TestStationMetricsCollector_FinishRunWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spacestation.prom")
	c, err := NewStationMetricsCollector("DS9", path, nil)
	require.NoError(t, err)

	c.Publish(context.Background(), station.ServiceEvent{Kind: station.EventServiceComplete, ShipID: 1})
	err = c.FinishRun(context.Background(), station.RunSummary{
		RunID: "ds9-1", Total: 3, Serviced: 2, Failed: 1, Duration: 90 * time.Second,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `spacestation_docking_ships_serviced_total{station="DS9"} 1`)
	assert.Contains(t, text, `spacestation_docking_last_run_ships{outcome="failed",station="DS9"} 1`)
	assert.Contains(t, text, `spacestation_docking_last_run_duration_seconds{station="DS9"} 90`)
}

func TestPrometheusMiddleware_RecordsStatus(t *testing.T) {
	collector := NewCommandMetricsCollector()
	m := mediator.NewMediator()
	m.Use(PrometheusMiddleware(collector))

	type pingQuery struct{}
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, mediator.HandlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return nil, errors.New("offline")
		})))

	_, err := m.Send(context.Background(), &pingQuery{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("pingQuery", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.inFlight.WithLabelValues("pingQuery")))
}

func TestPrometheusMiddleware_CancelledRun(t *testing.T) {
	collector := NewCommandMetricsCollector()
	m := mediator.NewMediator()
	m.Use(PrometheusMiddleware(collector))

	type drainQuery struct{}
	var inFlight float64
	require.NoError(t, mediator.RegisterHandler[*drainQuery](m, mediator.HandlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			inFlight = testutil.ToFloat64(collector.inFlight.WithLabelValues("drainQuery"))
			return nil, fmt.Errorf("dispatch: %w", context.Canceled)
		})))

	_, err := m.Send(context.Background(), &drainQuery{})
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1.0, inFlight)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("drainQuery", "cancelled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.commandsTotal.WithLabelValues("drainQuery", "error")))
}

func TestCommandName(t *testing.T) {
	type RunStationCommand struct{}

	assert.Equal(t, "RunStationCommand", commandName(&RunStationCommand{}))
	assert.Equal(t, "UnknownCommand", commandName(nil))
}
