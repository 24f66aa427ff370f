package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "spacestation"
	// Subsystem for dispatch metrics
	subsystem = "docking"
)

// Collector is implemented by every metrics group in this package
type Collector interface {
	Collectors() []prometheus.Collector
}

// NewRegistry creates a private registry and registers the given groups.
// The station has no scrape endpoint; the registry is exported with
// WriteTextfile at the end of a run.
func NewRegistry(groups ...Collector) (*prometheus.Registry, error) {
	registry := prometheus.NewRegistry()
	for _, group := range groups {
		for _, metric := range group.Collectors() {
			if err := registry.Register(metric); err != nil {
				return nil, fmt.Errorf("failed to register metric: %w", err)
			}
		}
	}
	return registry, nil
}

// WriteTextfile writes every metric in registry to path in the Prometheus
// text format, for node_exporter's textfile collector
func WriteTextfile(path string, registry *prometheus.Registry) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
