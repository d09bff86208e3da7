package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CFG_STR", "value")
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_BAD_INT", "forty-two")
	t.Setenv("CFG_BOOL", "false")
	t.Setenv("CFG_DUR", "90m")
	t.Setenv("CFG_BAD_DUR", "-1s")

	assert.Equal(t, "value", EnvDefault("CFG_STR", "def"))
	assert.Equal(t, "def", EnvDefault("CFG_MISSING", "def"))

	assert.Equal(t, 42, EnvIntDefault("CFG_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("CFG_BAD_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("CFG_MISSING", 1))

	assert.False(t, EnvBoolDefault("CFG_BOOL", true))
	assert.True(t, EnvBoolDefault("CFG_MISSING", true))

	assert.Equal(t, 90*time.Minute, EnvDurationDefault("CFG_DUR", time.Hour))
	assert.Equal(t, time.Hour, EnvDurationDefault("CFG_BAD_DUR", time.Hour))
}

func TestNonEmpty(t *testing.T) {
	assert.NoError(t, NonEmpty("x", "X"))
	assert.EqualError(t, NonEmpty("", "JWT_SECRET"), "missing required env JWT_SECRET")
}
