// Package logger builds the process-wide zerolog logger for the Codetyper
// binaries.
//
// Call Init once at startup. Every entry carries a timestamp and the caller,
// plus a "service" field naming the binary when Options.Service is set
// (codetyper-api, codetyper-seed). Each subsystem then derives its own logger
// with Component, which adds a "component" field (credentials, gate, tasks,
// audit_dispatcher, ...), so one service's output can be filtered per
// subsystem:
//
//	log := logger.Init(logger.Options{Level: cfg.LogLevel, Service: "codetyper-api"})
//	svc := service.NewTaskService(repo, users, log) // tags entries component=tasks
//
// Levels, lowest first:
//
//	TRACE (-1) → DEBUG (0) → INFO (1) → WARN (2) → ERROR (3)
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Field names shared by every entry.
const (
	ServiceKey   = "service"
	ComponentKey = "component"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Pretty switches to coloured console output for local runs. Production
	// emits one JSON object per line.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service names the binary. It is attached to every entry as ServiceKey.
	Service string
}

var (
	instance zerolog.Logger
	once     sync.Once
)

// Init builds the process logger and sets the global level. Only the first call
// has any effect; later calls return the logger built by the first one.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		ctx := zerolog.New(out).
			Level(lvl).
			With().
			Timestamp().
			Caller()
		if opts.Service != "" {
			ctx = ctx.Str(ServiceKey, opts.Service)
		}
		instance = ctx.Logger()
	})
	return instance
}

// Component derives the logger for one subsystem. Services and middleware
// call it in their constructors with the logger they were given.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str(ComponentKey, name).Logger()
}

// Reset drops the process logger so the next Init rebuilds it. Tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
}

// parseLevel maps a configured level name to zerolog, falling back to info.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
