package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrInFlight is returned when a base path is already being converted
var ErrInFlight = errors.New("conversion already in progress")

// DefaultClaimTTL bounds how long a leaked claim can block a base path
const DefaultClaimTTL = 30 * time.Minute

// Claims tracks base paths with a conversion in progress in this process
type Claims struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewClaims creates a claim registry; expired claims are swept every
// cleanupInterval
func NewClaims(ttl time.Duration, cleanupInterval time.Duration) *Claims {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &Claims{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Acquire claims key, failing with ErrInFlight if it is already held
func (c *Claims) Acquire(key string) error {
	k := ClaimKey(key)
	if err := c.cache.Add(k, time.Now(), c.ttl); err != nil {
		return fmt.Errorf("%s: %w", key, ErrInFlight)
	}
	return nil
}

// Release drops a claim
func (c *Claims) Release(key string) {
	c.cache.Delete(ClaimKey(key))
}

// Held reports whether key is currently claimed
func (c *Claims) Held(key string) bool {
	_, found := c.cache.Get(ClaimKey(key))
	return found
}

// ClaimKey normalises a base path so "./run" and "run" collide
func ClaimKey(basePath string) string {
	if abs, err := filepath.Abs(basePath); err == nil {
		return "log2csv:v1:" + abs
	}
	return "log2csv:v1:" + filepath.Clean(basePath)
}
