// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/flashkv/flashkv/internal/storage"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifySweeper(&cfg.Sweeper); err != nil {
		return err
	}
	if err := verifyRateLimit(&cfg.RateLimit); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("server.addr: %w", err)
	}
	if cfg.Shards != 0 && cfg.Shards != storage.ShardCount {
		return fmt.Errorf("server.shards is fixed at %d and cannot be configured", storage.ShardCount)
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

func verifySweeper(cfg *SweeperSection) error {
	if cfg.MinInterval > 0 && cfg.BaseInterval > 0 && cfg.MinInterval > cfg.BaseInterval {
		return errors.New("sweeper.min_interval must not exceed sweeper.base_interval")
	}
	if cfg.MaxInterval > 0 && cfg.BaseInterval > 0 && cfg.MaxInterval < cfg.BaseInterval {
		return errors.New("sweeper.max_interval must not be less than sweeper.base_interval")
	}
	return nil
}

func verifyRateLimit(cfg *RateLimitSection) error {
	if cfg.CommandsPerSecond < 0 {
		return errors.New("rate_limit.commands_per_second must not be negative")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr: %w", err)
	}
	return nil
}
