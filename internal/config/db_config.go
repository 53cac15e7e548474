package config

import (
	"fmt"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"strings"
)

var supportedDbSchemes = []string{"sqlite", "postgres", "postgresql"}

type DBConfig struct {
	// ConnectionString is a sqlite file path, "sqlite:///path" or a postgres:// URL.
	ConnectionString string `mapstructure:"connection_string"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}

	scheme, _, isURL := strings.Cut(config.ConnectionString, "://")
	if isURL && !lo.Contains(supportedDbSchemes, scheme) {
		return fmt.Errorf("unsupported db connection string scheme %q, expected one of %v", scheme, supportedDbSchemes)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING")
}
