package mcts

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the package-level logger for warn-level diagnostics; the search
// loop logs a failed playout through it, tagged with the engine's search
// id. It defaults to a quiet stderr writer at
// warn level; hosts embedding this package should replace it with their own
// configured logger, the same way the teacher leaves logging to its caller.
var Logger = zerolog.New(defaultWriter()).With().Timestamp().Str("component", "mcts").Logger().Level(zerolog.WarnLevel)

func defaultWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
}

// SetLogger overrides the package logger, e.g. to route into a host
// process's structured logging pipeline.
func SetLogger(l zerolog.Logger) {
	Logger = l
}
