package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/spacestation-go/internal/domain/shared"
)

// Request outcomes used as the status label
const (
	statusSuccess   = "success"
	statusCancelled = "cancelled"
	statusError     = "error"
)

// CommandMetricsCollector times mediator commands and queries
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
	inFlight        *prometheus.GaugeVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "request_duration_seconds",
				Help:      "Command and query execution time",
				// a batch run holds the request for its whole duration
				Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 60, 300, 1800},
			},
			[]string{"request", "status"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_total",
				Help:      "Commands and queries handled, by type and status",
			},
			[]string{"request", "status"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_in_flight",
				Help:      "Commands and queries currently being handled",
			},
			[]string{"request"},
		),
	}
}

// Collectors lists every metric of the group
func (c *CommandMetricsCollector) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.commandDuration, c.commandsTotal, c.inFlight}
}

// Register adds the group to an existing registry
func (c *CommandMetricsCollector) Register(registry *prometheus.Registry) error {
	for _, metric := range c.Collectors() {
		if err := registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// started marks a request as in flight and returns the func that ends it
func (c *CommandMetricsCollector) started(request string) func() {
	gauge := c.inFlight.WithLabelValues(request)
	gauge.Inc()
	return gauge.Dec
}

// RecordCommandExecution records one handled request. Cancellation is
// counted apart from failures so an interrupted run does not look broken.
func (c *CommandMetricsCollector) RecordCommandExecution(request string, seconds float64, err error) {
	status := requestStatus(err)
	c.commandDuration.WithLabelValues(request, status).Observe(seconds)
	c.commandsTotal.WithLabelValues(request, status).Inc()
}

func requestStatus(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case shared.TagOf(err) == shared.ErrorTagCancelled:
		return statusCancelled
	default:
		return statusError
	}
}
