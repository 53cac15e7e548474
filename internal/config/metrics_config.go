package config

import "github.com/spf13/viper"

type MetricsConfig struct {
	// Address of the /metrics listener, e.g. ":8080". Empty disables the server.
	Address string `mapstructure:"address"`
}

func (config MetricsConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("metrics.address", "METRICS_ADDRESS")
}
