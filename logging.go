package transitmap

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a structured console logger with RFC3339 timestamps.
func NewLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})
}
