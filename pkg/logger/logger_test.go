package logger

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLoggerDefaults(t *testing.T) {
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("LOG_FORMAT")

	log := InitLogger()
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestInitLoggerLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	log := InitLogger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestInitLoggerInvalidLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouting")
	log := InitLogger()
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestInitLoggerJSONFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	log := InitLogger()
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestGetLoggerReusesInstance(t *testing.T) {
	first := InitLogger()
	assert.Same(t, first, GetLogger())
}

func TestWithBuildContext(t *testing.T) {
	entry := WithBuildContext("run-42", 7)
	assert.Equal(t, "run-42", entry.Data["run_id"])
	assert.Equal(t, 7, entry.Data["team_id"])
}
