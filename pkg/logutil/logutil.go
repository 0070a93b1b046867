package logutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/charmbracelet/log"
)

// Configure sets the package logger level and timestamp format.
func Configure(levelRaw string) error {
	level, err := ParseLevel(levelRaw)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)
	return nil
}

// SetOutput redirects the package logger, mostly for tests.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
}

// ParseLevel accepts the usual level names plus "trace", which maps to debug.
func ParseLevel(levelRaw string) (log.Level, error) {
	levelRaw = strings.ToLower(strings.TrimSpace(levelRaw))
	switch levelRaw {
	case "":
		return log.InfoLevel, nil
	case "trace", "trac":
		// No native trace level; debug is the most verbose.
		return log.DebugLevel, nil
	default:
		level, err := log.ParseLevel(levelRaw)
		if err != nil {
			return 0, fmt.Errorf("invalid loglevel %q", levelRaw)
		}
		return level, nil
	}
}
