package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	commandBurst    = 5
	commandInterval = 2 * time.Second

	// Limiters of users silent for that long are forgotten.
	limiterTTL = 10 * time.Minute
)

// userLimiter throttles commands per Discord user.
type userLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiterEntry
	lastGC   time.Time
}

type userLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newUserLimiter() *userLimiter {
	return &userLimiter{
		limiters: map[string]*userLimiterEntry{},
		lastGC:   time.Now(),
	}
}

func (l *userLimiter) allow(userID string) bool {
	return l.allowAt(userID, time.Now())
}

func (l *userLimiter) allowAt(userID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > limiterTTL {
		for k, v := range l.limiters {
			if now.Sub(v.lastSeen) > limiterTTL {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	entry, ok := l.limiters[userID]
	if !ok {
		entry = &userLimiterEntry{
			limiter: rate.NewLimiter(rate.Every(commandInterval), commandBurst),
		}
		l.limiters[userID] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}
