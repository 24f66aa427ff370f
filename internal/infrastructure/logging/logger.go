package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/spacestation-go/internal/infrastructure/config"
)

// atomicLevel is shared by every logger built here so verbosity can be
// raised after start-up (e.g. by the --verbose flag) without rebuilding.
var atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// NewLogger builds a zap logger from the logging section of the config.
// The returned cleanup flushes buffered entries and closes the log file.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	atomicLevel.SetLevel(level)

	sink, closeSink, err := openSink(cfg)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, atomicLevel)

	var opts []zap.Option
	if cfg.IncludeCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.IncludeStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger := zap.New(core, opts...)
	cleanup := func() {
		_ = logger.Sync()
		closeSink()
	}
	return logger, cleanup, nil
}

// SetLevel changes the level of every logger created by NewLogger
func SetLevel(level zapcore.Level) {
	atomicLevel.SetLevel(level)
}

func newEncoder(format string) zapcore.Encoder {
	if format == "json" {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

func openSink(cfg config.LoggingConfig) (zapcore.WriteSyncer, func(), error) {
	switch cfg.Output {
	case "stderr":
		return zapcore.Lock(os.Stderr), func() {}, nil
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return zapcore.Lock(f), func() { _ = f.Close() }, nil
	default:
		return zapcore.Lock(os.Stdout), func() {}, nil
	}
}
