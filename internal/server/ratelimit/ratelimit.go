// Package ratelimit provides per-client request throttling backed by token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket pairs a token bucket with the settings it was built from.
type bucket struct {
	limiter  *rate.Limiter
	capacity int
	perSec   rate.Limit
}

func newBucket(limit int, window time.Duration, burst int) *bucket {
	capacity := burst
	if capacity <= 0 {
		capacity = limit
	}
	perSec := rate.Limit(float64(limit) / window.Seconds())
	return &bucket{
		limiter:  rate.NewLimiter(perSec, capacity),
		capacity: capacity,
		perSec:   perSec,
	}
}

// status reports the whole tokens left and when the bucket will be full again.
func (b *bucket) status(now time.Time) (remaining int, resetTime time.Time) {
	tokens := b.limiter.TokensAt(now)
	if tokens < 0 {
		tokens = 0
	}
	remaining = int(tokens)
	if tokens < float64(b.capacity) && b.perSec > 0 {
		secondsUntilFull := (float64(b.capacity) - tokens) / float64(b.perSec)
		return remaining, now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return remaining, now
}

// retryAfter is how long until one token is available again.
func (b *bucket) retryAfter(now time.Time) time.Duration {
	tokens := b.limiter.TokensAt(now)
	if tokens >= 1 || b.perSec <= 0 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(b.perSec) * float64(time.Second))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	buckets       map[string]*bucket // client:endpoint:method -> bucket
	lastAccess    map[string]time.Time
	mu            sync.Mutex
	config        *Config
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	limiter := &Limiter{
		buckets:    make(map[string]*bucket),
		lastAccess: make(map[string]time.Time),
		config:     config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Unlimited endpoint (health check)
	if endpointConfig.Limit <= 0 || endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := time.Now()
	key := clientID + ":" + endpoint + ":" + method
	b := l.getBucket(key, endpointConfig, now)

	allowed := b.limiter.AllowN(now, 1)
	remaining, resetTime := b.status(now)

	var retryAfter time.Duration
	if !allowed {
		retryAfter = b.retryAfter(now)
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      endpointConfig.Limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: retryAfter,
	}
}

func (l *Limiter) getBucket(key string, cfg *EndpointConfig, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(cfg.Limit, cfg.Window, cfg.Burst)
		l.buckets[key] = b
	}
	l.lastAccess[key] = now
	return b
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets(time.Now().Add(-1 * time.Hour))
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets not touched since cutoff.
func (l *Limiter) cleanupBuckets(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
