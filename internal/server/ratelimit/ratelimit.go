// Package ratelimit provides per-client request rate limiting backed by
// token buckets.
package ratelimit

import (
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds rate limiter settings.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	// Idle clients are evicted after this duration
	ClientTTL time.Duration
}

// LoadConfig reads rate limiter settings from the environment.
// RATE_LIMIT_RPS defaults to 10, RATE_LIMIT_BURST to 20.
func LoadConfig() Config {
	cfg := Config{
		RequestsPerSecond: 10,
		Burst:             20,
		ClientTTL:         3 * time.Minute,
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Burst = n
		}
	}
	return cfg
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks a token bucket per client ID and evicts idle clients.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	config  Config
	done    chan struct{}
	once    sync.Once
}

// NewLimiter creates a Limiter and starts its cleanup goroutine.
func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		clients: make(map[string]*client),
		config:  cfg,
		done:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the client may make a request now.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	c, ok := l.clients[clientID]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.clients[clientID] = c
	}
	c.lastSeen = time.Now()
	l.mu.Unlock()

	return c.limiter.Allow()
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.config.ClientTTL)
			l.mu.Lock()
			for id, c := range l.clients {
				if c.lastSeen.Before(cutoff) {
					delete(l.clients, id)
				}
			}
			l.mu.Unlock()
		}
	}
}
