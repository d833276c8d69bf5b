package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects level and output format of the process logger.
type Options struct {
	Level  string
	Format string // "json" or "console"
	Output io.Writer
}

// Init configures the global zerolog logger and returns it.
func Init(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level '%s': %w", opts.Level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	switch strings.ToLower(opts.Format) {
	case "", "json":
	case "console":
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format '%s'", opts.Format)
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger, nil
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
