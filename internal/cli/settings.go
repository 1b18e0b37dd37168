package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wesleyorama2/mapsmith/internal/log"
	"github.com/wesleyorama2/mapsmith/internal/output"
)

// Binder registers flags for one group of settings and reads them back once
// flags, environment and the settings file are known.
type Binder interface {
	Bind(*viper.Viper, *cobra.Command) error
	Configure(*viper.Viper) error
}

// Settings is everything the commands read from flags, environment
// variables prefixed with MAPSMITH_, and the optional settings file.
type Settings struct {
	File   SettingsFile
	Log    log.Config
	Client ClientSettings
	Output OutputSettings

	// Vars are the manifest variables from the settings file
	Vars map[string]string
}

// Binders lists every group. The file comes first so its values act as
// defaults for the others.
func (s *Settings) Binders() []Binder {
	return []Binder{&s.File, &s.Log, &s.Client, &s.Output}
}

// Bind registers all persistent flags on cmd and binds them to v.
func (s *Settings) Bind(v *viper.Viper, cmd *cobra.Command) error {
	for _, b := range s.Binders() {
		if err := b.Bind(v, cmd); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	cmd.PersistentFlags().StringArray("var", nil, "manifest variable as key=value (can be used multiple times)")

	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// Configure reads every group from v.
func (s *Settings) Configure(v *viper.Viper) error {
	for _, b := range s.Binders() {
		if err := b.Configure(v); err != nil {
			return err
		}
	}
	s.Vars = v.GetStringMapString("vars")
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	// MAPSMITH_LOG_LEVEL sets log-level, MAPSMITH_TIMEOUT sets timeout
	v.SetEnvPrefix("MAPSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// SettingsFile is the optional settings file given with --config.
type SettingsFile struct {
	Path string
}

func (f *SettingsFile) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().String("config", "", "settings file (yaml, json or toml)")
	return nil
}

func (f *SettingsFile) Configure(v *viper.Viper) error {
	f.Path = v.GetString("config")
	if f.Path == "" {
		return nil
	}

	ext := strings.TrimPrefix(filepath.Ext(f.Path), ".")
	switch ext {
	case "yaml", "yml", "json", "toml":
	default:
		return fmt.Errorf("settings file extension must be .yaml, .json or .toml")
	}

	v.SetConfigFile(f.Path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	return nil
}

// ClientSettings configures the HTTP gateway.
type ClientSettings struct {
	Timeout  time.Duration
	Insecure bool
	BaseURL  string
}

func (c *ClientSettings) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().DurationP("timeout", "t", 30*time.Second, "request timeout")
	cmd.PersistentFlags().Bool("insecure", false, "skip TLS certificate verification")
	cmd.PersistentFlags().String("base-url", "", "host used by methods whose manifest declares none")
	return nil
}

func (c *ClientSettings) Configure(v *viper.Viper) error {
	c.Timeout = v.GetDuration("timeout")
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", v.GetString("timeout"))
	}
	c.Insecure = v.GetBool("insecure")
	c.BaseURL = v.GetString("base-url")
	return nil
}

// OutputSettings controls how results are printed.
type OutputSettings struct {
	Format  output.OutputFormat
	NoColor bool
	Verbose bool
}

func (o *OutputSettings) Bind(v *viper.Viper, cmd *cobra.Command) error {
	cmd.PersistentFlags().StringP("format", "o", string(output.FormatText), "output format (text, json, yaml)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	return nil
}

func (o *OutputSettings) Configure(v *viper.Viper) error {
	format, err := output.ParseFormat(v.GetString("format"))
	if err != nil {
		return err
	}
	o.Format = format
	o.NoColor = v.GetBool("no-color")
	o.Verbose = v.GetBool("verbose")
	return nil
}
