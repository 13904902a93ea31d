// Package ratelimit throttles bid submission per bidder.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyspace = "auctions:bid-throttle"
	redisTimeout    = 2 * time.Second
)

// The counter is created with its expiry before the first increment so a
// crash between the two calls can never leave a counter that lives forever.
var takeScript = redis.NewScript(`
redis.call("SET", KEYS[1], 0, "PX", ARGV[1], "NX")
return redis.call("INCR", KEYS[1])
`)

// Quota is the outcome of one throttled attempt. Remaining is -1 when the
// limiter does not count.
type Quota struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter hands out attempts per key
type Limiter interface {
	Take(ctx context.Context, key string) (Quota, error)
}

// Config describes a BidThrottle
type Config struct {
	Addr          string
	Password      string
	Keyspace      string
	BidsPerWindow int
	Window        time.Duration
}

// BidThrottle gives every bidder a budget of bid attempts per clock-aligned
// window. Counters live in Redis so all replicas draw from the same budget.
type BidThrottle struct {
	client   *redis.Client
	keyspace string
	budget   int
	window   time.Duration
	clock    func() time.Time
}

// NewBidThrottle connects a throttle to Redis
func NewBidThrottle(cfg Config) (*BidThrottle, error) {
	if cfg.BidsPerWindow <= 0 {
		return nil, errors.New("ratelimit: bids per window must be positive")
	}
	if cfg.Window < time.Millisecond {
		return nil, errors.New("ratelimit: window must be at least one millisecond")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("ratelimit: redis address is required")
	}
	keyspace := strings.TrimSpace(cfg.Keyspace)
	if keyspace == "" {
		keyspace = defaultKeyspace
	}

	return &BidThrottle{
		client:   redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password}),
		keyspace: keyspace,
		budget:   cfg.BidsPerWindow,
		window:   cfg.Window,
		clock:    time.Now,
	}, nil
}

// Take spends one attempt from the bidder's budget for the current window.
// Redis failures are returned together with a denied quota.
func (t *BidThrottle) Take(ctx context.Context, bidder string) (Quota, error) {
	bidder = strings.TrimSpace(bidder)
	if bidder == "" {
		bidder = "anonymous"
	}

	windowMs := t.window.Milliseconds()
	nowMs := t.clock().UTC().UnixMilli()
	slot := nowMs / windowMs
	key := fmt.Sprintf("%s:%s:%d", t.keyspace, bidder, slot)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	used, err := takeScript.Run(ctx, t.client, []string{key}, windowMs).Int()
	if err != nil {
		return Quota{}, fmt.Errorf("ratelimit: take %s: %w", bidder, err)
	}

	quota := Quota{Allowed: used <= t.budget, Remaining: t.budget - used}
	if quota.Remaining < 0 {
		quota.Remaining = 0
	}
	if !quota.Allowed {
		quota.RetryAfter = time.Duration((slot+1)*windowMs-nowMs) * time.Millisecond
	}
	return quota, nil
}

// Close releases the Redis connection pool
func (t *BidThrottle) Close() error {
	return t.client.Close()
}

// Unlimited never throttles, used when no budget is configured
type Unlimited struct{}

func (Unlimited) Take(context.Context, string) (Quota, error) {
	return Quota{Allowed: true, Remaining: -1}, nil
}
