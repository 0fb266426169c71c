package docseal

import (
	"fmt"
	"io"
	"path"
	"runtime"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

const serviceName = "docseal"

// LogFormatter is the formatter installed by SetupLogger.
var LogFormatter = &formatter.Formatter{
	TimestampFormat: "2006-01-02 15:04:05",
	HideKeys:        true,
	FieldsOrder:     []string{"service", "subsystem", "func", "kid"},
	CallerFirst:     true,
	CustomCallerFormatter: func(f *runtime.Frame) string {
		return fmt.Sprintf(" [%s %s():%d]", path.Base(f.File), f.Function, f.Line)
	},
}

// SetupLogger builds a logger entry for a subsystem at the given level.
// An empty or unknown level keeps the global logrus level; LogNone
// discards all output.
func SetupLogger(level LogLevel, subsystem string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(LogFormatter)
	entry := logger.WithFields(logrus.Fields{
		"service":   serviceName,
		"subsystem": subsystem,
	})

	if level == LogNone {
		logger.SetOutput(io.Discard)
		return entry
	}

	lvl := logrus.GetLevel()
	if level != "" {
		parsed, err := logrus.ParseLevel(string(level))
		if err != nil {
			entry.Warnf("invalid log level '%s', using '%s'", level, lvl)
		} else {
			lvl = parsed
		}
	}
	logger.SetLevel(lvl)
	return entry
}
