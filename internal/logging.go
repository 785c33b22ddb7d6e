package internal

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogConfig holds logger configuration
type LogConfig struct {
	// Level is the minimum level: debug, info, warn or error
	Level string
	// Pretty enables human-readable console output instead of JSON
	Pretty bool
	// Output defaults to os.Stderr
	Output io.Writer
}

// SetupLogging configures the global zerolog logger
func SetupLogging(cfg LogConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// SetupFileLogging sends logs to a file under logDir. The MCP stdio transport owns
// stdout and stdin, so nothing may be written there. On failure logging is disabled.
func SetupFileLogging(logDir, level string) (io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		SetupLogging(LogConfig{Level: level, Output: io.Discard})
		return nil, err
	}

	logFile, err := os.OpenFile(filepath.Join(logDir, "mcp.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		SetupLogging(LogConfig{Level: level, Output: io.Discard})
		return nil, err
	}

	SetupLogging(LogConfig{Level: level, Output: logFile})
	return logFile, nil
}

// parseLevel converts a level name to a zerolog.Level, defaulting to info
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a logger tagged with a component name
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
