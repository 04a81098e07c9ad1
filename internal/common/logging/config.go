package logging

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	FormatText      = "text"
	FormatColourful = "colourful"
	FormatJson      = "json"
)

var validLogFormats = map[string]bool{
	FormatText:      true,
	FormatColourful: true,
	FormatJson:      true,
}

// Config defines logging configuration.
type Config struct {
	// Log level, e.g. info, debug etc
	Level string `mapstructure:"level"`
	// Logging format, one of text, colourful or json
	Format string `mapstructure:"format"`
	// Defines configuration for file logging
	File struct {
		// Whether file logging is enabled.
		Enabled bool `mapstructure:"enabled"`
		// The location of the logfile on disk
		Path string `mapstructure:"path"`
		// Maximum size in megabytes of the log file before it gets rotated
		MaxSizeMb int `mapstructure:"maxSizeMb"`
		// Maximum number of old log files to retain
		MaxBackups int `mapstructure:"maxBackups"`
		// Maximum number of days to retain old log files
		MaxAgeDays int `mapstructure:"maxAgeDays"`
		// Whether to compress rotated log files
		Compress bool `mapstructure:"compress"`
	} `mapstructure:"file"`
}

// DefaultConfig logs at info level in text format on stdout.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText}
}

func validate(c Config) error {
	if _, err := parseLogLevel(c.Level); err != nil {
		return err
	}
	if err := validateLogFormat(c.Format); err != nil {
		return err
	}
	if c.File.Enabled {
		if strings.TrimSpace(c.File.Path) == "" {
			return errors.New("file.path must be set when file logging is enabled")
		}
		if c.File.MaxSizeMb <= 0 {
			return errors.New("file.maxSizeMb must be greater than zero")
		}
		if c.File.MaxBackups < 0 {
			return errors.New("file.maxBackups must not be negative")
		}
		if c.File.MaxAgeDays < 0 {
			return errors.New("file.maxAgeDays must not be negative")
		}
	}
	return nil
}

func validateLogFormat(f string) error {
	if _, ok := validLogFormats[f]; !ok {
		formats := maps.Keys(validLogFormats)
		slices.Sort(formats)
		return errors.Errorf("unknown log format: %s.  Valid formats are %s", f, formats)
	}
	return nil
}

func parseLogLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info", "":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "panic":
		return logrus.PanicLevel, nil
	case "fatal":
		return logrus.FatalLevel, nil
	default:
		return logrus.InfoLevel, errors.Errorf("unknown level: %s", level)
	}
}
