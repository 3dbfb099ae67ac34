package relay

import (
	"sync"
	"time"

	"github.com/veikko/skystrike/internal/core"
)

// RateLimiter is a sliding-window limiter for room create/join attempts
// per session.
type RateLimiter struct {
	mu        sync.Mutex
	history   map[core.SessionID][]time.Time
	limit     int
	interval  time.Duration
	lastSweep time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		history:  make(map[core.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *RateLimiter) Allow(sid core.SessionID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)
	rl.sweepLocked(now, windowStart)

	attempts := rl.history[sid]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		return false
	}

	fresh = append(fresh, now)
	rl.history[sid] = fresh
	return true
}

// sweepLocked drops sessions whose last attempt fell out of the window,
// so departed sessions do not pin history forever. At most one sweep
// per interval.
func (rl *RateLimiter) sweepLocked(now, windowStart time.Time) {
	if now.Sub(rl.lastSweep) < rl.interval {
		return
	}
	rl.lastSweep = now
	for sid, attempts := range rl.history {
		stale := true
		for _, t := range attempts {
			if t.After(windowStart) {
				stale = false
				break
			}
		}
		if stale {
			delete(rl.history, sid)
		}
	}
}
