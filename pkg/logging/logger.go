package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config selects the level, format and destination of a logger
type Config struct {
	Level  string
	Format string
	Output io.Writer
	// Fields are attached to every entry, e.g. a run id
	Fields logrus.Fields
}

// NewConfig reads LOG_LEVEL and LOG_FORMAT from the environment
func NewConfig() Config {
	return Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}
}

// New builds a logger. Unknown levels fall back to info and are reported once
// through the new logger.
func New(config Config) *logrus.Logger {
	log := logrus.New()
	if config.Output != nil {
		log.SetOutput(config.Output)
	}

	if len(config.Fields) > 0 {
		log.AddHook(&fieldsHook{fields: config.Fields})
	}

	switch strings.ToLower(config.Format) {
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(NewColoredJSONFormatter())
	}

	if config.Level == "" {
		log.SetLevel(logrus.InfoLevel)
		return log
	}

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.WithFields(logrus.Fields{
			"attempted_level": config.Level,
			"default_level":   "INFO",
		}).Warn("Invalid log level specified, defaulting to INFO")
		return log
	}
	log.SetLevel(level)
	return log
}

// fieldsHook stamps fixed fields onto entries that do not already carry them
type fieldsHook struct {
	fields logrus.Fields
}

func (h *fieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
