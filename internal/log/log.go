// Package log builds the logrus loggers used by the mapsmith command line.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the logging settings read from flags, environment and the
// settings file.
type Config struct {
	Level  string
	Format string
}

// Bind registers the logging flags on cmd.
func (c *Config) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("log-level", "warn",
		"sets the minimum logging level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", FormatText,
		"sets the log format (text, json)")
	return nil
}

// Configure reads the logging settings from v.
func (c *Config) Configure(v *viper.Viper) error {
	c.Level = strings.ToLower(v.GetString("log-level"))
	if c.Level == "" {
		c.Level = "warn"
	}

	c.Format = strings.ToLower(v.GetString("log-format"))
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("log format %q is not supported, use %s or %s", c.Format, FormatText, FormatJSON)
	}

	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Properties configures a logrus logger directly.
type Properties struct {
	Formatter logrus.Formatter
	Level     logrus.Level
	Output    io.Writer
}

// NewLogrus creates a logger from props. A nil formatter selects text
// output and a nil writer selects stderr.
func NewLogrus(props Properties) *logrus.Logger {
	logger := logrus.New()

	if props.Formatter == nil {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(props.Formatter)
	}

	logger.SetLevel(props.Level)

	if props.Output == nil {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(props.Output)
	}

	return logger
}

// New creates a logger from a Config, writing to output.
func New(config *Config, output io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	props := Properties{Level: level, Output: output}
	switch config.Format {
	case FormatJSON:
		props.Formatter = &logrus.JSONFormatter{}
	case FormatText, "":
		props.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	default:
		return nil, fmt.Errorf("log format %q is not supported", config.Format)
	}

	return NewLogrus(props), nil
}

// ForComponent tags every entry of logger with the component name.
func ForComponent(logger logrus.FieldLogger, component string) logrus.FieldLogger {
	return logger.WithField("component", component)
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return NewLogrus(Properties{Level: logrus.PanicLevel, Output: io.Discard})
}
