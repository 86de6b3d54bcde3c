// Package config loads the autoload configuration from a file, the
// environment and command-line overrides through Viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/HerbHall/snmpautoload/internal/autoload"
	"github.com/HerbHall/snmpautoload/internal/snmp"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the complete configuration of one autoload invocation.
type Config struct {
	SNMP     snmp.Config     `mapstructure:"snmp"`
	Autoload autoload.Config `mapstructure:"autoload"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Output   OutputConfig    `mapstructure:"output"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig controls how details and metrics are written.
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	MetricsFile string `mapstructure:"metrics_file"`
}

// DefaultConfig returns the configuration used when no source sets a key.
func DefaultConfig() Config {
	return Config{
		SNMP:     snmp.DefaultConfig(),
		Autoload: autoload.DefaultConfig(),
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Output:   OutputConfig{Format: FormatJSON},
	}
}

// Load builds a Viper instance with defaults, the optional config file and
// AUTOLOAD_ environment variables (AUTOLOAD_SNMP_COMMUNITY=private).
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("autoload")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/autoload")
	}

	v.SetEnvPrefix("AUTOLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}
	return v, nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Viper cannot type-check.
func (c Config) Validate() error {
	switch c.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid output format %q: must be %q or %q", c.Output.Format, FormatJSON, FormatYAML)
	}
	switch c.SNMP.Version {
	case "v1", "v2c", "v3":
	default:
		return fmt.Errorf("invalid snmp version %q", c.SNMP.Version)
	}
	if c.SNMP.Target == "" && c.SNMP.ReplayFile == "" {
		return errors.New("one of snmp.target or snmp.replay_file is required")
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("snmp.target", d.SNMP.Target)
	v.SetDefault("snmp.port", d.SNMP.Port)
	v.SetDefault("snmp.version", d.SNMP.Version)
	v.SetDefault("snmp.community", d.SNMP.Community)
	v.SetDefault("snmp.v3.username", "")
	v.SetDefault("snmp.v3.auth_protocol", "")
	v.SetDefault("snmp.v3.auth_passphrase", "")
	v.SetDefault("snmp.v3.priv_protocol", "")
	v.SetDefault("snmp.v3.priv_passphrase", "")
	v.SetDefault("snmp.v3.security_level", "")
	v.SetDefault("snmp.v3.context_name", "")
	v.SetDefault("snmp.timeout", d.SNMP.Timeout)
	v.SetDefault("snmp.retries", d.SNMP.Retries)
	v.SetDefault("snmp.max_repetitions", d.SNMP.MaxRepetitions)
	v.SetDefault("snmp.requests_per_second", d.SNMP.RequestsPerSecond)
	v.SetDefault("snmp.replay_file", "")

	v.SetDefault("autoload.supported_os", []string{})
	v.SetDefault("autoload.permissive", d.Autoload.Permissive)
	v.SetDefault("autoload.port_exclude_pattern", d.Autoload.PortExcludePattern)
	v.SetDefault("autoload.module_exclude_pattern", d.Autoload.ModuleExcludePattern)
	v.SetDefault("autoload.to_container_pattern", d.Autoload.ToContainerPattern)
	v.SetDefault("autoload.port_channel_exclude_pattern", d.Autoload.PortChannelExcludePattern)
	v.SetDefault("autoload.resource_name", "")

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.metrics_file", "")
}
