package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, uint(37), cfg.Allocator.TimestampBits)
	assert.Equal(t, uint(5), cfg.Allocator.GroupBits)
	assert.Equal(t, uint(10), cfg.Allocator.MachineBits)
	assert.Equal(t, uint64(0), cfg.Allocator.GroupID)
	assert.Equal(t, uint64(0), cfg.Allocator.MachineID)

	assert.True(t, cfg.Sampling.Enabled)
	assert.Equal(t, uint32(1000), cfg.Sampling.SpanLimit)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, uint32(1000), cfg.Sampling.SpanLimit)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"TRACE_TIMESTAMP_BITS": "41",
		"TRACE_GROUP_BITS":     "4",
		"TRACE_MACHINE_BITS":   "8",
		"TRACE_GROUP_ID":       "3",
		"TRACE_MACHINE_ID":     "200",
		"TRACE_ENABLED":        "false",
		"TRACE_SPAN_LIMIT":     "50",
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
	}
	for key, value := range envVars {
		require.NoError(t, os.Setenv(key, value))
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, uint(41), cfg.Allocator.TimestampBits)
	assert.Equal(t, uint(4), cfg.Allocator.GroupBits)
	assert.Equal(t, uint(8), cfg.Allocator.MachineBits)
	assert.Equal(t, uint64(3), cfg.Allocator.GroupID)
	assert.Equal(t, uint64(200), cfg.Allocator.MachineID)
	assert.False(t, cfg.Sampling.Enabled)
	assert.Equal(t, uint32(50), cfg.Sampling.SpanLimit)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestValidateRejectsOversizedIdentity(t *testing.T) {
	cfg := Default()
	cfg.Allocator.GroupID = 1 << 5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Allocator.MachineID = 1 << 10
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadLayout(t *testing.T) {
	cfg := Default()
	cfg.Allocator.TimestampBits = 50
	cfg.Allocator.GroupBits = 8
	cfg.Allocator.MachineBits = 8
	assert.Error(t, cfg.Validate())
}
