// Package config defines the server configuration structure.
package config

import (
	"time"

	"github.com/flashkv/flashkv/internal/storage"
)

// Default configuration values.
const (
	DefaultAddr         = "127.0.0.1:6379"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 5 * time.Minute

	DefaultRateLimitCommandsPerSecond = 0

	DefaultMetricsAddr = "127.0.0.1:9100"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	sweeper := storage.DefaultSweeperConfig()
	return &ServerConfig{
		Server: ServerSection{
			Addr:         DefaultAddr,
			Shards:       storage.ShardCount,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		Sweeper: SweeperSection{
			BaseInterval:      sweeper.BaseInterval,
			MinInterval:       sweeper.MinInterval,
			MaxInterval:       sweeper.MaxInterval,
			SpeedupThreshold:  sweeper.SpeedupThreshold,
			SlowdownThreshold: sweeper.SlowdownThreshold,
		},
		RateLimit: RateLimitSection{
			CommandsPerSecond: DefaultRateLimitCommandsPerSecond,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// SweeperConfig converts the loaded section into the shape
// storage.NewSweeper expects.
func (s SweeperSection) SweeperConfig() storage.SweeperConfig {
	return storage.SweeperConfig{
		BaseInterval:      s.BaseInterval,
		MinInterval:       s.MinInterval,
		MaxInterval:       s.MaxInterval,
		SpeedupThreshold:  s.SpeedupThreshold,
		SlowdownThreshold: s.SlowdownThreshold,
	}
}
