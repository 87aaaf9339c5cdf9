// Package logs holds the process-wide logger. Output goes to a file because
// stdout belongs to the TUI.
package logs

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	log     zerolog.Logger
	logFile *os.File
)

func init() {
	// Discard until Initialize points us at a real file.
	log = zerolog.New(io.Discard)
}

// Initialize opens debug.log under the given directory and installs a logger
// at the requested level ("debug", "info", "warn", "error").
func Initialize(dir, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	log = zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return nil
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }

// Get returns the underlying logger for contextual child loggers.
func Get() zerolog.Logger { return log }
