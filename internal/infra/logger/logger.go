package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/k1bu/FORBETRA-sub000/internal/infra/config"
)

// Log is the global logger instance
var Log = logrus.New()

// Init configures the global logger: JSON for production and staging, coloured
// text everywhere else.
func Init(cfg *config.AppConfig) {
	Configure(Log, os.Stdout, cfg.LogLevel, cfg.Environment)
	Log.Info("Logger initialized successfully.")
	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
}

// Configure applies level and format to l. Unknown levels fall back to info.
func Configure(l *logrus.Logger, out io.Writer, level, environment string) {
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
		l.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", level, err)
	} else {
		l.SetLevel(lvl)
	}

	switch strings.ToLower(environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
