package commands

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/ayurchat/internal/config"
)

var (
	logFileMu sync.Mutex
	logFile   *os.File
)

// setupLogging configures the global logger for cmd. Commands that own the
// terminal log to a file under the config directory; the rest log to stderr.
func setupLogging(cmd *cobra.Command, deps *Dependencies) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	if _, ok := cmd.Annotations[annotationTUI]; ok {
		if err := closeLogging(); err != nil {
			return err
		}
		path, err := config.GetLogPath()
		if err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFileMu.Lock()
		logFile = f
		logFileMu.Unlock()

		log.Logger = newLogger(f, cfg.Verbose)
		return nil
	}

	console := zerolog.ConsoleWriter{Out: deps.Stderr, TimeFormat: time.Kitchen}
	log.Logger = newLogger(console, cfg.Verbose)
	return nil
}

// closeLogging closes the log file opened by setupLogging, if any
func closeLogging() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// logger returns the commands logger
func logger() *zerolog.Logger {
	l := log.Logger.With().Str("component", "commands").Logger()
	return &l
}
