package config

import (
	"fmt"
	"github.com/spf13/viper"
	"slices"
)

type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelDebug   LogLevel = "DEBUG"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
	LevelFatal   LogLevel = "FATAL"
)

var knownLevels = []LogLevel{LevelInfo, LevelDebug, LevelWarning, LevelError, LevelFatal}

type LoggerConfig struct {
	LogLevel LogLevel `mapstructure:"log_level"`
	AppName  string   `mapstructure:"app_name"`
	// OutputFile duplicates stdout into a file when set.
	OutputFile   string `mapstructure:"output_file"`
	LokiURL      string `mapstructure:"loki_url"`
	LokiUser     string `mapstructure:"loki_user"`
	LokiPassword string `mapstructure:"loki_password"`
}

func (config LoggerConfig) validate() error {
	if !slices.Contains(knownLevels, config.LogLevel) {
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}
	return nil
}

func (config LoggerConfig) bindEnvironmentVariables() error {
	bindings := [][2]string{
		{"logger.log_level", "LOG_LEVEL"},
		{"logger.app_name", "APP_NAME"},
		{"logger.output_file", "LOG_FILE"},
		{"logger.loki_url", "LOKI_URL"},
		{"logger.loki_user", "LOKI_USER"},
		{"logger.loki_password", "LOKI_PASSWORD"},
	}

	for _, binding := range bindings {
		if err := viper.BindEnv(binding[0], binding[1]); err != nil {
			return err
		}
	}
	return nil
}
