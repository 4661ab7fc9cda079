// Package logging wires the --log flag to a logrus logger, matching the
// five named levels (plus "off") the source's --log flag accepted.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds a logger at the named level. An empty level defaults to Info.
// "off" silences the logger entirely by discarding its output (and setting
// PanicLevel), since logrus has no true off switch.
func New(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch strings.ToLower(level) {
	case "", "info":
		logger.SetLevel(logrus.InfoLevel)
	case "trace":
		logger.SetLevel(logrus.TraceLevel)
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	case "off":
		logger.SetOutput(io.Discard)
		logger.SetLevel(logrus.PanicLevel)
	default:
		return nil, fmt.Errorf("--log must be one of trace, debug, info, warn, error, off, got %q", level)
	}

	return logger, nil
}
