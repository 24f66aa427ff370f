package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// StationMetricsCollector turns the service event stream into metrics.
// It is an EventSink and a RunFinalizer; the Prometheus types it updates
// are safe for concurrent use.
type StationMetricsCollector struct {
	registry     *prometheus.Registry
	textfilePath string
	logger       *zap.Logger

	shipsDispatched prometheus.Counter
	shipsServiced   prometheus.Counter
	shipsFailed     *prometheus.CounterVec
	baysInUse       prometheus.Gauge
	bayConversions  prometheus.Counter
	bayWaits        prometheus.Counter
	stageCycles     *prometheus.HistogramVec
	stagesFailed    *prometheus.CounterVec
	runDuration     prometheus.Gauge
	runShips        *prometheus.GaugeVec
}

// NewStationMetricsCollector creates the collector and its private registry.
// An empty textfilePath disables the export in FinishRun.
func NewStationMetricsCollector(stationName, textfilePath string, logger *zap.Logger) (*StationMetricsCollector, error) {
	labels := prometheus.Labels{"station": stationName}

	c := &StationMetricsCollector{
		textfilePath: textfilePath,
		logger:       logger,

		shipsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "ships_dispatched_total",
			Help:        "Ships taken off the service queue",
			ConstLabels: labels,
		}),
		shipsServiced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "ships_serviced_total",
			Help:        "Ships that completed every service stage",
			ConstLabels: labels,
		}),
		shipsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "ships_failed_total",
			Help:        "Ships whose visit ended without service, by error tag",
			ConstLabels: labels,
		}, []string{"error_tag"}),
		baysInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "bays_in_use",
			Help:        "Bays currently held by a ship",
			ConstLabels: labels,
		}),
		bayConversions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "bay_conversions_total",
			Help:        "Dual-environment bays converted before docking",
			ConstLabels: labels,
		}),
		bayWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "bay_waits_total",
			Help:        "Reported waits for a free compatible bay",
			ConstLabels: labels,
		}),
		stageCycles: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "stage_cycles",
			Help:        "Service cycles spent per completed stage",
			ConstLabels: labels,
			Buckets:     []float64{1, 2, 4, 6, 8, 10, 15, 20, 30, 50},
		}, []string{"stage"}),
		stagesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "stages_failed_total",
			Help:        "Service stages skipped because of an error",
			ConstLabels: labels,
		}, []string{"stage"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "last_run_duration_seconds",
			Help:        "Wall-clock duration of the most recent run",
			ConstLabels: labels,
		}),
		runShips: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "last_run_ships",
			Help:        "Ships in the most recent run by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
	}

	registry, err := NewRegistry(c)
	if err != nil {
		return nil, err
	}
	c.registry = registry
	return c, nil
}

// Collectors lists every metric of the group
func (c *StationMetricsCollector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.shipsDispatched,
		c.shipsServiced,
		c.shipsFailed,
		c.baysInUse,
		c.bayConversions,
		c.bayWaits,
		c.stageCycles,
		c.stagesFailed,
		c.runDuration,
		c.runShips,
	}
}

// Registry exposes the private registry, e.g. to add command metrics
func (c *StationMetricsCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Publish implements station.EventSink
func (c *StationMetricsCollector) Publish(_ context.Context, event station.ServiceEvent) {
	switch event.Kind {
	case station.EventDequeued:
		c.shipsDispatched.Inc()
	case station.EventBayWaiting:
		c.bayWaits.Inc()
	case station.EventBaySelected:
		c.baysInUse.Inc()
	case station.EventBayConverting:
		c.bayConversions.Inc()
	case station.EventBayReleased:
		c.baysInUse.Dec()
	case station.EventStageCompleted:
		c.stageCycles.WithLabelValues(string(event.Stage)).Observe(float64(event.Cycles))
	case station.EventStageFailed:
		c.stagesFailed.WithLabelValues(string(event.Stage)).Inc()
	case station.EventServiceComplete:
		c.shipsServiced.Inc()
	case station.EventShipFailed:
		c.shipsFailed.WithLabelValues(string(event.ErrorTag)).Inc()
	}
}

// FinishRun records the run summary and writes the textfile export
func (c *StationMetricsCollector) FinishRun(_ context.Context, summary station.RunSummary) error {
	c.runDuration.Set(summary.Duration.Seconds())
	c.runShips.WithLabelValues("total").Set(float64(summary.Total))
	c.runShips.WithLabelValues("serviced").Set(float64(summary.Serviced))
	c.runShips.WithLabelValues("failed").Set(float64(summary.Failed))
	c.runShips.WithLabelValues("cancelled").Set(float64(summary.Cancelled))

	if c.textfilePath == "" {
		return nil
	}
	if err := WriteTextfile(c.textfilePath, c.registry); err != nil {
		return err
	}
	if c.logger != nil {
		c.logger.Debug("metrics exported", zap.String("path", c.textfilePath))
	}
	return nil
}
