package console

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/spacestation-go/internal/domain/station"
)

// Sink renders the event stream as structured log lines
type Sink struct {
	logger *zap.Logger
}

// NewSink creates a console sink writing through logger
func NewSink(logger *zap.Logger) *Sink {
	return &Sink{logger: logger.Named("station")}
}

// Publish implements station.EventSink
func (s *Sink) Publish(_ context.Context, event station.ServiceEvent) {
	level := levelOf(event)
	ce := s.logger.Check(level, event.Message)
	if ce == nil {
		return
	}
	ce.Write(fields(event)...)
}

func levelOf(event station.ServiceEvent) zapcore.Level {
	switch event.Level() {
	case station.LevelError:
		return zapcore.ErrorLevel
	case station.LevelWarning:
		return zapcore.WarnLevel
	}
	// per-stage chatter stays out of the default info stream
	switch event.Kind {
	case station.EventStageStarted, station.EventStageSkipped:
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func fields(e station.ServiceEvent) []zap.Field {
	fs := make([]zap.Field, 0, 8)
	fs = append(fs, zap.String("event", string(e.Kind)), zap.Time("at", e.Timestamp))
	if e.ShipID != 0 {
		fs = append(fs,
			zap.Int("seq", e.Sequence),
			zap.Int("ship_id", e.ShipID),
			zap.String("ship", e.ShipName),
		)
	}
	if e.DockID != 0 {
		fs = append(fs, zap.Int("bay", e.DockID))
	}
	if e.Stage != "" {
		fs = append(fs, zap.String("stage", string(e.Stage)), zap.Int("cycles", e.Cycles))
	}
	if e.ErrorTag != "" {
		fs = append(fs, zap.String("error_tag", string(e.ErrorTag)))
	}
	return fs
}
