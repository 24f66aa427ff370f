package config

// MetricsConfig controls the Prometheus textfile export written after each run
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Destination of the text exposition file, e.g. for node_exporter's textfile collector
	TextfilePath string `mapstructure:"textfile_path" yaml:"textfile_path" validate:"required_if=Enabled true"`
}
