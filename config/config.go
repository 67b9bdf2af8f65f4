// Package config loads tracing pipeline configuration from the
// environment.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/tracewire/tracewire/snowflake"
)

// Config holds all pipeline configuration.
type Config struct {
	Allocator AllocatorConfig
	Sampling  SamplingConfig
	Logging   LogConfig
}

// AllocatorConfig holds the id layout and this node's identity.
type AllocatorConfig struct {
	TimestampBits uint   `envconfig:"TRACE_TIMESTAMP_BITS" default:"37"`
	GroupBits     uint   `envconfig:"TRACE_GROUP_BITS" default:"5"`
	MachineBits   uint   `envconfig:"TRACE_MACHINE_BITS" default:"10"`
	GroupID       uint64 `envconfig:"TRACE_GROUP_ID" default:"0"`
	MachineID     uint64 `envconfig:"TRACE_MACHINE_ID" default:"0"`
}

// SamplingConfig holds the admission budget.
type SamplingConfig struct {
	Enabled   bool   `envconfig:"TRACE_ENABLED" default:"true"`
	SpanLimit uint32 `envconfig:"TRACE_SPAN_LIMIT" default:"1000"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Allocator: AllocatorConfig{
			TimestampBits: snowflake.DefaultTimestampBits,
			GroupBits:     snowflake.DefaultGroupBits,
			MachineBits:   snowflake.DefaultMachineBits,
		},
		Sampling: SamplingConfig{
			Enabled:   true,
			SpanLimit: 1000,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Snowflake converts the allocator section into the allocator's layout.
func (c AllocatorConfig) Snowflake() snowflake.Config {
	return snowflake.Config{
		TimestampBits: c.TimestampBits,
		GroupBits:     c.GroupBits,
		MachineBits:   c.MachineBits,
	}
}

// Validate checks the layout and that this node's identity fits inside it.
func (c *Config) Validate() error {
	layout := c.Allocator.Snowflake()
	if err := layout.Validate(); err != nil {
		return err
	}
	if max := uint64(1)<<c.Allocator.GroupBits - 1; c.Allocator.GroupID > max {
		return fmt.Errorf("config: group id %d exceeds %d", c.Allocator.GroupID, max)
	}
	if max := uint64(1)<<c.Allocator.MachineBits - 1; c.Allocator.MachineID > max {
		return fmt.Errorf("config: machine id %d exceeds %d", c.Allocator.MachineID, max)
	}
	return nil
}
