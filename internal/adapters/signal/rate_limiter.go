package signal

import (
	"time"
)

// messageLimiter is a sliding-window cap on inbound frames. One limiter per
// connection, touched only by that connection's readPump, so no lock.
type messageLimiter struct {
	history  []time.Time
	limit    int
	interval time.Duration
}

func newMessageLimiter(limit int, interval time.Duration) *messageLimiter {
	return &messageLimiter{
		history:  make([]time.Time, 0, limit),
		limit:    limit,
		interval: interval,
	}
}

func (rl *messageLimiter) Allow(now time.Time) bool {
	if rl.limit <= 0 {
		return true
	}
	windowStart := now.Add(-rl.interval)

	fresh := rl.history[:0]
	for _, t := range rl.history {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	rl.history = fresh

	if len(rl.history) >= rl.limit {
		return false
	}
	rl.history = append(rl.history, now)
	return true
}
