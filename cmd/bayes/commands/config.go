/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration loading for the bayes commands. Reads an optional config
file and BAYES_* environment variables through viper, unmarshals them into Settings
and validates the result.
*/

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kleascm/bayes-engine/pkg/analysis"
	"github.com/kleascm/bayes-engine/pkg/logging"
	"github.com/kleascm/bayes-engine/pkg/monitoring"
	"github.com/spf13/viper"
)

// Settings holds the resolved configuration shared by every command
type Settings struct {
	Algorithm   string                `mapstructure:"algorithm" validate:"required,oneof=enumeration elimination both"`
	Ordering    string                `mapstructure:"ordering" validate:"required,oneof=reverse-topological min-neighbors"`
	Tolerance   float64               `mapstructure:"tolerance" validate:"gt=0"`
	Output      string                `mapstructure:"output" validate:"required,oneof=text json"`
	LogLevel    string                `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat   string                `mapstructure:"log_format" validate:"required,oneof=text json custom"`
	LogDir      string                `mapstructure:"log_dir"`
	MetricsFile string                `mapstructure:"metrics_file"`
	DiffDir     string                `mapstructure:"diff_dir"`
	Thresholds  monitoring.Thresholds `mapstructure:"thresholds"`
}

var settingsValidator = validator.New()

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	// Set config file if specified
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("BAYES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	return nil
}

func setDefaults() {
	viper.SetDefault("algorithm", "enumeration")
	viper.SetDefault("ordering", "reverse-topological")
	viper.SetDefault("tolerance", analysis.DefaultTolerance)
	viper.SetDefault("output", "text")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("log_dir", "")
	viper.SetDefault("metrics_file", "")
	viper.SetDefault("diff_dir", "")
	viper.SetDefault("thresholds.slow_query", "0s")
	viper.SetDefault("thresholds.large_factor", 0)
}

// LoadSettings unmarshals and validates the current viper state
func LoadSettings() (*Settings, error) {
	setDefaults()

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := settingsValidator.Struct(&settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if settings.Thresholds.SlowQuery < 0 || settings.Thresholds.LargeFactor < 0 {
		return nil, fmt.Errorf("invalid configuration: thresholds must not be negative")
	}
	return &settings, nil
}

// SetupLogging creates the command logger. Log lines go to console and, when a
// log directory is configured, to a timestamped file inside it.
func SetupLogging(settings *Settings, console io.Writer) (*logging.Logger, error) {
	logger, err := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.LogLevel(settings.LogLevel),
		Format:    logging.LogFormat(settings.LogFormat),
		OutputDir: settings.LogDir,
		MaxFiles:  10,
		Timestamp: true,
		Console:   console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}
