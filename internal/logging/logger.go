package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/web-scraper/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger builds the JSON structured logger described by cfg and makes
// it the logrus standard logger as well. Logs go to stderr so stdout stays
// free for fetched content.
func InitLogger(cfg config.Config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel())
	if err != nil {
		return nil, fmt.Errorf("cannot parse log level: %w", err)
	}

	output, outErr := buildOutput(cfg)
	if outErr != nil {
		fmt.Fprintf(os.Stderr, "logger_fallback: %v\n", outErr)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())

	if outErr != nil {
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.LogFile(),
		}).Warn(outErr.Error())
	}

	return logger, nil
}

// buildOutput returns a rotating file writer, or stderr when no file is
// configured or its folder cannot be created.
func buildOutput(cfg config.Config) (io.Writer, error) {
	if cfg.LogFile() == "" {
		return os.Stderr, nil
	}

	dir := filepath.Dir(cfg.LogFile())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.Stderr, fmt.Errorf("cannot create log folder: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.LogFile(),
		MaxSize:    cfg.LogMaxSize(),
		MaxBackups: cfg.LogMaxBackups(),
		Compress:   cfg.LogCompress(),
		LocalTime:  true,
	}, nil
}

// CommandFields are the base fields of every CLI log line.
func CommandFields(command string, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     command,
		"configPath": configPath,
	}
}
