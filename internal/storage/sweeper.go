package storage

import (
	"context"
	"time"
)

// SweeperConfig tunes the active-expiry background loop. Fixed at
// construction; the loop itself is the only thing that adjusts the
// effective interval at runtime.
type SweeperConfig struct {
	BaseInterval time.Duration
	MinInterval  time.Duration
	MaxInterval  time.Duration
	// SpeedupThreshold is the fraction of keys found expired in a sweep
	// above which the next interval is halved.
	SpeedupThreshold float64
	// SlowdownThreshold is the fraction below which — combined with
	// zero expirations — the next interval is doubled.
	SlowdownThreshold float64
}

// DefaultSweeperConfig mirrors the reference cadence: fast enough to
// reclaim a bursty workload quickly, slow enough to stay out of the way
// of an idle one.
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		BaseInterval:      100 * time.Millisecond,
		MinInterval:       10 * time.Millisecond,
		MaxInterval:       time.Second,
		SpeedupThreshold:  0.25,
		SlowdownThreshold: 0.01,
	}
}

// Sweeper periodically reclaims expired keys so idle, never-read keys
// don't linger in memory forever. It complements the lazy expiry built
// into Get/withListRead; neither alone is sufficient — lazy expiry never
// reclaims keys nobody reads again, and a sweep-only approach would
// leave freshly-expired keys visible until their shard's turn comes up.
type Sweeper struct {
	engine *Engine
	cfg    SweeperConfig
}

// NewSweeper builds a Sweeper over engine using cfg.
func NewSweeper(engine *Engine, cfg SweeperConfig) *Sweeper {
	return &Sweeper{engine: engine, cfg: cfg}
}

// Run drives the sweep loop until ctx is canceled. Cancellation is the
// single-producer shutdown signal: the owner canceling ctx is
// idempotent, and Run has released every shard lock by the time it
// returns. Launch it as its own goroutine and register ctx's cancel
// with the shutdown coordinator.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.cfg.BaseInterval
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			interval = s.sweepAndAdapt(interval)
			timer.Reset(interval)
		}
	}
}

// sweepAndAdapt runs one full pass and returns the next interval per the
// rate-based cadence rule.
func (s *Sweeper) sweepAndAdapt(current time.Duration) time.Duration {
	keysBefore, expired := s.sweepOnce()

	denominator := keysBefore
	if denominator < 1 {
		denominator = 1
	}
	rate := float64(expired) / float64(denominator)

	switch {
	case rate > s.cfg.SpeedupThreshold:
		next := current / 2
		if next < s.cfg.MinInterval {
			next = s.cfg.MinInterval
		}
		return next
	case rate < s.cfg.SlowdownThreshold && expired == 0:
		next := current * 2
		if next > s.cfg.MaxInterval {
			next = s.cfg.MaxInterval
		}
		return next
	default:
		return current
	}
}

// sweepOnce walks every shard once, acquiring each shard's write locks
// in turn (never both at once, and never held across another shard),
// and removes every entry with now >= expires_at. It returns the total
// key count observed before the pass and the number actually removed.
func (s *Sweeper) sweepOnce() (keysBefore, expired int64) {
	at := now()

	for i := range s.engine.shards {
		sh := &s.engine.shards[i]

		sh.stringsMu.Lock()
		keysBefore += int64(len(sh.strings))
		for k, v := range sh.strings {
			if v.expired(at) {
				delete(sh.strings, k)
				expired++
			}
		}
		sh.stringsMu.Unlock()

		sh.listsMu.Lock()
		keysBefore += int64(len(sh.lists))
		for k, v := range sh.lists {
			if v.expired(at) {
				delete(sh.lists, k)
				expired++
			}
		}
		sh.listsMu.Unlock()
	}

	if expired > 0 {
		s.engine.counters.keyCount.Add(-expired)
		s.engine.counters.expiredCount.Add(expired)
	}
	return keysBefore, expired
}
