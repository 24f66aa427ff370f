package config

import "time"

// StationConfig holds dispatch loop settings
type StationConfig struct {
	// Station name, used in run ids and reports
	Name string `mapstructure:"name" yaml:"name" validate:"required"`

	// Wall-clock length of one service cycle
	CycleDuration time.Duration `mapstructure:"cycle_duration" yaml:"cycle_duration" validate:"gt=0"`

	// Cycles to wait between bay acquisition attempts
	RetryCycles int `mapstructure:"retry_cycles" yaml:"retry_cycles" validate:"min=1"`

	// Run mode: batch drains the roster once, continuous waits for arrivals
	Mode string `mapstructure:"mode" yaml:"mode" validate:"required,oneof=batch continuous"`

	// Reject ships no bay could ever host instead of waiting for them.
	// A pointer so an explicit false survives SetDefaults.
	FailFast *bool `mapstructure:"fail_fast" yaml:"fail_fast"`

	// One bay_waiting event per this many failed acquisitions
	WaitEventEvery int `mapstructure:"wait_event_every" yaml:"wait_event_every" validate:"min=1"`

	// Optional lock file held for the duration of a run
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file"`
}

// FailFastEnabled returns the effective fail_fast setting
func (c StationConfig) FailFastEnabled() bool {
	return c.FailFast == nil || *c.FailFast
}

// RosterConfig locates the roster files. JSON or YAML is chosen by extension.
type RosterConfig struct {
	ShipsPath string `mapstructure:"ships_path" yaml:"ships_path" validate:"required,nefield=BaysPath"`
	BaysPath  string `mapstructure:"bays_path" yaml:"bays_path" validate:"required"`

	// Optional list of federation ids giving the initial queue order
	OrderPath string `mapstructure:"order_path" yaml:"order_path"`
}

// ReportsConfig controls the per-ship report files
type ReportsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir" validate:"required_if=Enabled true"`
}
