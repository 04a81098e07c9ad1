package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

// ConfigureCommandLineLogging sets up bare message logging to stdout, suitable for command line tools.
func ConfigureCommandLineLogging() {
	commandLineFormatter := new(CommandLineFormatter)
	log.SetFormatter(commandLineFormatter)
	log.SetOutput(os.Stdout)
}

// ConfigureApplicationLogging configures the standard logrus logger.  Console output always goes to stdout;
// if file logging is enabled, the same entries are additionally written to a rotated log file.
func ConfigureApplicationLogging(config Config) error {
	if err := validate(config); err != nil {
		return errors.WithMessage(err, "invalid logging configuration")
	}
	level, err := parseLogLevel(config.Level)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if config.File.Enabled {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   config.File.Path,
			MaxSize:    config.File.MaxSizeMb,
			MaxBackups: config.File.MaxBackups,
			MaxAge:     config.File.MaxAgeDays,
			Compress:   config.File.Compress,
		})
	}

	log.SetLevel(level)
	log.SetFormatter(newFormatter(config.Format, config.File.Enabled))
	log.SetOutput(out)
	return nil
}

func newFormatter(format string, toFile bool) log.Formatter {
	switch format {
	case FormatJson:
		return &log.JSONFormatter{TimestampFormat: RFC3339Milli}
	case FormatColourful:
		// Colour codes are noise in a log file.
		return &log.TextFormatter{ForceColors: !toFile, DisableColors: toFile, FullTimestamp: true, TimestampFormat: RFC3339Milli}
	default:
		return &log.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: RFC3339Milli}
	}
}
