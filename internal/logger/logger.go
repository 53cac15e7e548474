package logger

import (
	"context"
	"github.com/maxaizer/hh-ingest/internal/config"
	"github.com/maxaizer/hh-ingest/internal/metrics"
	"github.com/maxaizer/hh-ingest/pkg/loki"
	log "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb        = "db"
	ErrorTypeHhApi     = "hh_api"
	ErrorTypeNormalize = "normalize"
	ErrorTypeInput     = "input"
)

var (
	logFile    *os.File
	lokiPusher *loki.Pusher
)

// errorsHook counts error-level entries per error_type.
type errorsHook struct{}

func (h *errorsHook) Fire(entry *log.Entry) error {
	errorType, ok := entry.Data[ErrorTypeField].(string)
	if !ok {
		errorType = "unknown"
	}

	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func (h *errorsHook) Levels() []log.Level {
	return []log.Level{log.ErrorLevel, log.FatalLevel, log.PanicLevel}
}

func Setup(ctx context.Context, cfg config.LoggerConfig) {

	var output io.Writer = os.Stdout
	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0755); err != nil {
			log.Fatalf("Failed to create log directory: %v", err)
		}

		file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		logFile = file
		output = io.MultiWriter(os.Stdout, logFile)
	}
	log.SetOutput(output)

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	})
	log.SetLevel(levelOf(cfg.LogLevel))
	log.AddHook(&errorsHook{})

	if cfg.LokiURL == "" {
		return
	}

	err := addLokiHook(ctx, loki.Config{
		Url:      cfg.LokiURL,
		Username: cfg.LokiUser,
		Password: cfg.LokiPassword,
		Labels:   map[string]string{"app": cfg.AppName},
	}, levelOf(cfg.LogLevel))
	if err != nil {
		log.Errorf("can't enable loki logging: %v", err)
	}
}

func levelOf(level config.LogLevel) log.Level {
	switch level {
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func Cleanup() {
	if lokiPusher != nil {
		lokiPusher.Stop()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}
