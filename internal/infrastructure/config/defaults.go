package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Station defaults
	if cfg.Station.Name == "" {
		cfg.Station.Name = "Space Station"
	}
	if cfg.Station.CycleDuration == 0 {
		cfg.Station.CycleDuration = time.Second
	}
	if cfg.Station.RetryCycles == 0 {
		cfg.Station.RetryCycles = 2
	}
	if cfg.Station.Mode == "" {
		cfg.Station.Mode = "batch"
	}
	if cfg.Station.FailFast == nil {
		failFast := true
		cfg.Station.FailFast = &failFast
	}
	if cfg.Station.WaitEventEvery == 0 {
		cfg.Station.WaitEventEvery = 10
	}

	// Roster defaults
	if cfg.Roster.ShipsPath == "" {
		cfg.Roster.ShipsPath = "ships.json"
	}
	if cfg.Roster.BaysPath == "" {
		cfg.Roster.BaysPath = "bays.json"
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "spacestation.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "spacestation"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "spacestation"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.TextfilePath == "" {
		cfg.Metrics.TextfilePath = "spacestation.prom"
	}

	// Reports defaults
	if cfg.Reports.Dir == "" {
		cfg.Reports.Dir = "Reports"
	}
}
