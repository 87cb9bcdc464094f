package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/kagami-lab/kagami/pkg/utils/logging"
)

// Logger holds configuration for the application logger
type Logger struct {
	level  string
	format string
	output string
}

// Flags returns CLI flags for logger configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level [debug, info, warn, error]",
			Value:       "info",
			Sources:     cli.EnvVars("KAGAMI_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format [console, json]",
			Value:       "console",
			Sources:     cli.EnvVars("KAGAMI_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output destination [-, stdout, stderr, or file path]",
			Value:       "stderr",
			Sources:     cli.EnvVars("KAGAMI_LOG_OUTPUT"),
			Destination: &l.output,
		},
	}
}

// LogValue returns the logger configuration as a structured log value
func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
	)
}

// Configure builds the default logger from the configured flags and returns
// a closer for any opened log file.
func (l *Logger) Configure() (func(), error) {
	var w io.Writer
	closer := func() {}

	switch l.output {
	case "-", "stdout":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	default:
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.output))
		}
		w = f
		closer = func() { _ = f.Close() }
	}

	level, err := parseLevel(l.level)
	if err != nil {
		closer()
		return nil, err
	}

	format := logging.FormatConsole
	if strings.ToLower(l.format) == "json" {
		format = logging.FormatJSON
	}

	logging.SetDefault(logging.New(w, level, format))
	return closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.New("invalid log level", goerr.V("level", s))
	}
}
