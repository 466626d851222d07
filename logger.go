package framebridge

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// sharedLogger is the process-wide logger handed to every engine built by a
// FrameLayer. Accessed from the UI goroutine only; no locking.
var sharedLogger = newDefaultLogger()

func newDefaultLogger() *zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("lib", "framebridge").Logger().Level(zerolog.InfoLevel)
	return &logger
}

// SharedLogger returns the process-wide logger.
func SharedLogger() *zerolog.Logger {
	return sharedLogger
}

// SetSharedLogger replaces the process-wide logger. Engines already built keep
// the logger they were given.
func SetSharedLogger(logger zerolog.Logger) {
	sharedLogger = &logger
}

// fatalf terminates the process after logging. Replaced in tests.
var fatalf = func(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	sharedLogger.WithLevel(zerolog.FatalLevel).Msg(msg)
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
