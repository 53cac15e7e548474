package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"time"
)

type IngestConfig struct {
	QueriesFile            string        `mapstructure:"queries_file" validate:"required"`
	DefaultArea            string        `mapstructure:"default_area"`
	HhBaseURL              string        `mapstructure:"hh_base_url" validate:"required,url"`
	HhUserAgent            string        `mapstructure:"hh_user_agent"`
	HhMaxRequestsPerSecond float32       `mapstructure:"hh_max_requests_per_second" validate:"gte=0"`
	PageSize               int           `mapstructure:"page_size" validate:"gte=1,lte=100"`
	MaxPages               int           `mapstructure:"max_pages" validate:"gte=1"`
	PageDelay              time.Duration `mapstructure:"page_delay" validate:"gte=0"`
	DetailDelay            time.Duration `mapstructure:"detail_delay" validate:"gte=0"`
	DimensionCacheTTL      time.Duration `mapstructure:"dimension_cache_ttl" validate:"gte=0"`
	// Schedule is a cron expression; empty means a single run.
	Schedule string `mapstructure:"schedule"`
}

func (config IngestConfig) validate() error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var errs []error
	for _, fieldErr := range validationErrs {
		errs = append(errs, fmt.Errorf("invalid variable %s: failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}
	return errors.Join(errs...)
}

func (config IngestConfig) bindEnvironmentVariables() error {
	var errs []error

	bindings := map[string]string{
		"ingest.queries_file":               "QUERIES_FILE",
		"ingest.default_area":               "DEFAULT_AREA",
		"ingest.hh_base_url":                "HH_BASE_URL",
		"ingest.hh_user_agent":              "HH_USER_AGENT",
		"ingest.hh_max_requests_per_second": "HH_MAX_REQUESTS_PER_SECOND",
		"ingest.schedule":                   "INGEST_SCHEDULE",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
