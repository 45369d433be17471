package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger. Components derive theirs from it.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Level is a log level name accepted on the command line
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

var zerologLevels = map[Level]zerolog.Level{
	DebugLevel: zerolog.DebugLevel,
	InfoLevel:  zerolog.InfoLevel,
	WarnLevel:  zerolog.WarnLevel,
	ErrorLevel: zerolog.ErrorLevel,
}

// ParseLevel maps a level name to a Level. Unknown names give InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool

	// Output defaults to stdout
	Output io.Writer
}

// Init replaces the global logger. Call it once, before components are built.
func Init(cfg Config) {
	level, ok := zerologLevels[cfg.Level]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if !cfg.JSONOutput {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	Logger = zerolog.New(out).With().Timestamp().Logger()
}

// WithComponent returns a child of the global logger tagged with component
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithManager tags logger with the manager name
func WithManager(logger zerolog.Logger, managerName string) zerolog.Logger {
	return logger.With().Str("manager", managerName).Logger()
}

// WithTool tags logger with the step tool name
func WithTool(logger zerolog.Logger, toolName string) zerolog.Logger {
	return logger.With().Str("step_tool", toolName).Logger()
}

// WithRunID tags every entry of the global logger with the run identifier.
// Loggers derived before the call are not affected.
func WithRunID(runID string) {
	Logger = Logger.With().Str("run_id", runID).Logger()
}
