package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	tokenCachePrefix = "auth:token:"
	// loadTimeout bounds a shared fill once it no longer follows any caller's context.
	loadTimeout = 5 * time.Second
)

// cachedToken is what the cache keeps per token id. Tokens are never revoked, so an
// entry stays valid until its TTL lapses.
type cachedToken struct {
	UserID int64  `json:"user_id"`
	Hash   string `json:"hash"`
}

// TokenCache fronts token lookups with Redis. A nil *TokenCache is valid and always
// calls the loader.
type TokenCache struct {
	client   *redis.Client
	ttl      time.Duration
	group    singleflight.Group
	observer CacheObserver
}

// CacheObserver is told whether each lookup was served from Redis.
type CacheObserver interface {
	ObserveTokenCache(hit bool)
}

// WithObserver attaches o and returns c.
func (c *TokenCache) WithObserver(o CacheObserver) *TokenCache {
	if c != nil {
		c.observer = o
	}
	return c
}

func (c *TokenCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveTokenCache(hit)
	}
}

// NewTokenCache returns nil when client is nil or ttl is not positive.
func NewTokenCache(client *redis.Client, ttl time.Duration) *TokenCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &TokenCache{client: client, ttl: ttl}
}

// Fetch returns the cached entry for id, populating it through loader on a miss.
// Redis failures degrade to the loader; concurrent misses share one loader call.
func (c *TokenCache) Fetch(ctx context.Context, id string, loader func(context.Context) (cachedToken, error)) (cachedToken, error) {
	if loader == nil {
		return cachedToken{}, errors.New("auth: token cache loader required")
	}
	if c == nil {
		return loader(ctx)
	}
	key := tokenCachePrefix + id
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var entry cachedToken
		if json.Unmarshal(payload, &entry) == nil {
			c.observe(true)
			return entry, nil
		}
	}
	c.observe(false)

	resultChan := c.group.DoChan(key, func() (interface{}, error) {
		// Waiters joining this call must not inherit the first caller's cancellation.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		entry, err := loader(loadCtx)
		if err != nil {
			return cachedToken{}, err
		}
		if raw, err := json.Marshal(entry); err == nil {
			_ = c.client.Set(loadCtx, key, raw, c.ttl).Err()
		}
		return entry, nil
	})
	select {
	case <-ctx.Done():
		return cachedToken{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return cachedToken{}, res.Err
		}
		return res.Val.(cachedToken), nil
	}
}
