// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for flashkv-server.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server"`
	Sweeper   SweeperSection   `koanf:"sweeper"`
	RateLimit RateLimitSection `koanf:"rate_limit"`
	Metrics   MetricsSection   `koanf:"metrics"`
	Log       LogSection       `koanf:"log"`
}

// ServerSection configures the RESP listener.
type ServerSection struct {
	Addr         string        `koanf:"addr"`
	Shards       int           `koanf:"shards"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// SweeperSection configures the background expiry sweeper. Field names
// mirror storage.SweeperConfig.
type SweeperSection struct {
	BaseInterval      time.Duration `koanf:"base_interval"`
	MinInterval       time.Duration `koanf:"min_interval"`
	MaxInterval       time.Duration `koanf:"max_interval"`
	SpeedupThreshold  float64       `koanf:"speedup_threshold"`
	SlowdownThreshold float64       `koanf:"slowdown_threshold"`
}

// RateLimitSection configures per-remote-IP command throttling.
type RateLimitSection struct {
	// CommandsPerSecond is the token-bucket refill rate per source IP.
	// Zero disables rate limiting.
	CommandsPerSecond int `koanf:"commands_per_second"`
	Burst             int `koanf:"burst"`
}

// MetricsSection configures the Prometheus/health HTTP endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// SensitiveValuePrefixes marks string values logged under a
	// suspicious-looking key (see internal/telemetry/logger's sensitive
	// key heuristics) as sensitive when they also start with one of
	// these prefixes, so e.g. a stored auth token never appears in
	// plaintext in a log line. Empty by default: FlashKV has no notion
	// of what a sensitive value looks like until an operator says so.
	SensitiveValuePrefixes []string `koanf:"sensitive_value_prefixes"`
}
