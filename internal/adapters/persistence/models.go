package persistence

import "time"

// StationRunModel represents the station_runs table
type StationRunModel struct {
	ID          string     `gorm:"column:id;primaryKey;not null"`
	StationName string     `gorm:"column:station_name;not null"`
	Mode        string     `gorm:"column:mode;not null;default:'batch'"`
	Status      string     `gorm:"column:status;not null"`
	TotalShips  int        `gorm:"column:total_ships;not null;default:0"`
	LastError   string     `gorm:"column:last_error;type:text"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;index"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	StoppedAt   *time.Time `gorm:"column:stopped_at"`
}

func (StationRunModel) TableName() string {
	return "station_runs"
}

// ServiceOutcomeModel represents the service_outcomes table, one row per ship per run
type ServiceOutcomeModel struct {
	RunID       string           `gorm:"column:run_id;primaryKey;not null"`
	Run         *StationRunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ShipID      int              `gorm:"column:ship_id;primaryKey;not null"`
	Sequence    int              `gorm:"column:sequence;not null"`
	ShipName    string           `gorm:"column:ship_name"`
	DockID      int              `gorm:"column:dock_id"`
	Status      string           `gorm:"column:status;not null"`
	Stage       string           `gorm:"column:stage"`
	ErrorTag    string           `gorm:"column:error_tag"`
	Reason      string           `gorm:"column:reason;type:text"`
	CompletedAt time.Time        `gorm:"column:completed_at"`
}

func (ServiceOutcomeModel) TableName() string {
	return "service_outcomes"
}

// ServiceEventModel represents the service_events table
type ServiceEventModel struct {
	ID        int              `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string           `gorm:"column:run_id;not null;index:idx_service_events_run_ship"`
	Run       *StationRunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ShipID    int              `gorm:"column:ship_id;index:idx_service_events_run_ship"`
	Timestamp time.Time        `gorm:"column:timestamp;not null"`
	Level     string           `gorm:"column:level;not null;default:'INFO'"`
	Kind      string           `gorm:"column:kind;not null"`
	Sequence  int              `gorm:"column:sequence"`
	ShipName  string           `gorm:"column:ship_name"`
	ShipClass int              `gorm:"column:ship_class"`
	DockID    int              `gorm:"column:dock_id"`
	Stage     string           `gorm:"column:stage"`
	Cycles    int              `gorm:"column:cycles"`
	ErrorTag  string           `gorm:"column:error_tag"`
	Message   string           `gorm:"column:message;type:text;not null"`
}

func (ServiceEventModel) TableName() string {
	return "service_events"
}
