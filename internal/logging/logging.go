// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"tradedeck-console/internal/config"
)

// NewLogger creates a logger from the given configuration. Console output
// is off by default so log lines do not tear through the rendered panels;
// the rotating file carries everything.
func NewLogger(cfg config.LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// LogPollRound logs the outcome of one poll round. Failed rounds are
// deliberately kept at debug: on a 2s cadence a transient failure is noise,
// not an operator concern.
func LogPollRound(logger zerolog.Logger, ok bool, duration time.Duration, err error) {
	if ok {
		logger.Debug().
			Str("event", "poll_round").
			Dur("duration", duration).
			Msg("Poll round published")
		return
	}
	logger.Debug().
		Str("event", "poll_round").
		Dur("duration", duration).
		Err(err).
		Msg("Poll round failed, keeping previous snapshot")
}

// LogDispatch logs a dispatched control action.
func LogDispatch(logger zerolog.Logger, intent, strategy, outcome string, err error) {
	event := logger.Info().
		Str("event", "dispatch").
		Str("intent", intent).
		Str("outcome", outcome)
	if strategy != "" {
		event = event.Str("strategy", strategy)
	}
	if err != nil {
		event.Err(err).Msg("Control action failed")
		return
	}
	event.Msg("Control action dispatched")
}
