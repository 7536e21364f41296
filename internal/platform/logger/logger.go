package logger

import (
	"log/slog"
	"os"
)

// New returns the application logger. JSON to stdout so log shippers can
// ingest it without extra parsing.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
