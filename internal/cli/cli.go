package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Config carries everything the demo binary needs to run.
type Config struct {
	ScenePath string
	LogFormat string
	LogLevel  string
	Frames    int
	Tick      time.Duration
}

// ExitError is an error with a process exit code attached.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. The boolean is true when the
// program should exit cleanly, as after -h.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("notf-demo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
notf-demo - drives a scene graph through UI ticks and render frames.

Usage:
  notf-demo [options] [SCENE_PATH]

Arguments:
  SCENE_PATH
    Path to an .hcl scene manifest.

Options:
`)
		flagSet.PrintDefaults()
	}

	sceneFlag := flagSet.String("scene", "", "Path to the scene manifest.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	framesFlag := flagSet.Int("frames", 10, "Number of render frames to run before exiting.")
	tickFlag := flagSet.Duration("tick", 16*time.Millisecond, "UI tick interval.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *sceneFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *framesFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid frames: must be at least 1"}
	}
	if *tickFlag <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid tick: must be positive"}
	}

	return &Config{
		ScenePath: path,
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Frames:    *framesFlag,
		Tick:      *tickFlag,
	}, false, nil
}

// NewLogger builds the application logger. It does not touch the global
// default, so tests can run with isolated loggers.
func NewLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
