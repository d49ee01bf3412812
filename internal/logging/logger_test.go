package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/web-scraper/internal/config"
	"github.com/rohmanhakim/web-scraper/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestInitLogger_DefaultsToStderr(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	require.NoError(t, err)

	logger, err := logging.InitLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, logger.Out)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestInitLogger_RotatingFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "web-scraper.log")
	cfg, err := config.WithDefault().WithLogFile(logFile).WithLogLevel("debug").Build()
	require.NoError(t, err)

	logger, err := logging.InitLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	rotator, ok := logger.Out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, logFile, rotator.Filename)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithFields(logging.CommandFields("get", "")).Info("hello")
	require.NoError(t, rotator.Close())

	data, readErr := os.ReadFile(logFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `"action":"get"`)
}

func TestInitLogger_FallsBackWhenFolderCannotBeCreated(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg, err := config.WithDefault().WithLogFile(filepath.Join(blocker, "sub", "app.log")).Build()
	require.NoError(t, err)

	logger, err := logging.InitLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, logger.Out)
}
