package ratelimit

import (
	"golang.org/x/time/rate"

	"github.com/flashkv/flashkv/pkg/cmap"
)

// Registry hands out one *rate.Limiter per remote address, creating it
// on first use. A zero-value CommandsPerSecond disables limiting
// entirely: Allow always reports true and no limiters are ever created.
type Registry struct {
	limiters          *cmap.Map[string, *rate.Limiter]
	commandsPerSecond int
	burst             int
}

// NewRegistry builds a Registry. commandsPerSecond <= 0 disables
// limiting.
func NewRegistry(commandsPerSecond int) *Registry {
	burst := commandsPerSecond
	if burst < 1 {
		burst = 1
	}
	return &Registry{
		limiters:          cmap.New[string, *rate.Limiter](),
		commandsPerSecond: commandsPerSecond,
		burst:             burst,
	}
}

// Enabled reports whether this registry actually limits anything.
func (r *Registry) Enabled() bool {
	return r.commandsPerSecond > 0
}

// Allow reports whether addr may execute one more command right now. It
// always returns true when the registry is disabled.
func (r *Registry) Allow(addr string) bool {
	if !r.Enabled() {
		return true
	}
	return r.limiterFor(addr).Allow()
}

func (r *Registry) limiterFor(addr string) *rate.Limiter {
	return r.limiters.Upsert(addr, nil, func(existing *rate.Limiter, exists bool) *rate.Limiter {
		if exists {
			return existing
		}
		return rate.NewLimiter(rate.Limit(r.commandsPerSecond), r.burst)
	})
}

// Forget drops addr's limiter, called when its connection closes so the
// registry doesn't grow without bound across the life of the process.
func (r *Registry) Forget(addr string) {
	r.limiters.Delete(addr)
}
