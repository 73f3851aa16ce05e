package cmd

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// newLogger creates the console logger of the application, writing to w.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
