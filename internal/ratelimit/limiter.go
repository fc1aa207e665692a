package ratelimit

import (
	"sync"
	"time"

	"github.com/yurfit/steam-scout/pkg/logger"
)

// Config holds per-instance limiter settings. Each instance owns isolated
// storage, so two limiters with colliding key strings never share counts.
type Config struct {
	// Window is the length of the sliding window.
	Window time.Duration
	// MaxRequests is the number of requests allowed inside the window.
	MaxRequests int
	// SweepInterval controls how often fully-expired entries are removed.
	// Defaults to Window when zero.
	SweepInterval time.Duration
	// SkipSuccessful retracts a request's timestamp once the response is known
	// to be a success (2xx/3xx).
	SkipSuccessful bool
	// SkipFailed retracts a request's timestamp once the response is known to
	// be a failure (4xx/5xx).
	SkipFailed bool
}

// Result is the outcome of a single limiter check.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	// Reservation identifies the timestamp recorded for this request. It is
	// nonzero only when Allowed is true, and is the handle Retract needs to
	// remove exactly this request's timestamp and no other.
	Reservation uint64
}

// stamp is one recorded request. The id makes retraction identity-based:
// removing "the most recent" timestamp would corrupt a concurrent request's
// count when two requests from the same key are in flight.
type stamp struct {
	id uint64
	at time.Time
}

type entry struct {
	stamps []stamp
}

// Limiter is an in-memory sliding-window rate limiter. Requests are counted
// inside a rolling window rather than fixed clock-aligned buckets. State is
// process-local: horizontally scaled instances each limit independently.
type Limiter struct {
	cfg Config
	log *logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
	nextID  uint64

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a limiter and starts its background sweep. Call Close to stop
// the sweep goroutine.
func New(cfg Config, log *logger.Logger) *Limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.Window
	}

	l := &Limiter{
		cfg:     cfg,
		log:     log,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}

	go l.sweepLoop()

	return l
}

// Check prunes key's window, then either records now and allows the request
// or rejects it with the time until the earliest recorded timestamp expires.
//
// The limiter fails open: an internal panic is recovered, logged, and the
// request allowed.
func (l *Limiter) Check(key string, now time.Time) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			l.log.WithField("panic", r).Error("Rate limiter check failed, allowing request")
			res = Result{Allowed: true}
		}
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}

	e.prune(now, l.cfg.Window)

	if len(e.stamps) >= l.cfg.MaxRequests {
		retryAfter := e.stamps[0].at.Add(l.cfg.Window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}
	}

	l.nextID++
	e.stamps = append(e.stamps, stamp{id: l.nextID, at: now})

	return Result{
		Allowed:     true,
		Remaining:   l.cfg.MaxRequests - len(e.stamps),
		Reservation: l.nextID,
	}
}

// Retract removes the timestamp recorded under reservation, if it is still in
// the window. Used when the limiter is configured to not count requests with a
// particular outcome.
func (l *Limiter) Retract(key string, reservation uint64) {
	if reservation == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return
	}
	for i, s := range e.stamps {
		if s.id == reservation {
			e.stamps = append(e.stamps[:i], e.stamps[i+1:]...)
			return
		}
	}
}

// SkipSuccessful reports whether successful responses should be retracted.
func (l *Limiter) SkipSuccessful() bool { return l.cfg.SkipSuccessful }

// SkipFailed reports whether failed responses should be retracted.
func (l *Limiter) SkipFailed() bool { return l.cfg.SkipFailed }

// ActiveKeys reports the number of keys currently held.
func (l *Limiter) ActiveKeys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close stops the background sweep.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// sweep drops every entry whose window has fully elapsed, bounding memory to
// one entry per key active within the last window.
func (l *Limiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		e.prune(now, l.cfg.Window)
		if len(e.stamps) == 0 {
			delete(l.entries, key)
		}
	}
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(time.Now())
		case <-l.stop:
			return
		}
	}
}

// prune drops timestamps that have left the window. A timestamp exactly
// window old is outside it.
func (e *entry) prune(now time.Time, window time.Duration) {
	cutoff := 0
	for cutoff < len(e.stamps) && now.Sub(e.stamps[cutoff].at) >= window {
		cutoff++
	}
	if cutoff > 0 {
		e.stamps = e.stamps[cutoff:]
	}
}
