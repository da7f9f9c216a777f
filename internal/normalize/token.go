package normalize

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenCache hands out the bearer credential for the normalization endpoint.
// Invalidate drops the cached value so the next Get fetches a fresh one.
type TokenCache interface {
	Get(ctx context.Context) (string, error)
	Invalidate(ctx context.Context)
}

// SourceFunc builds a token source. It is called again after Invalidate so a
// rejected token is never served from an inner cache.
type SourceFunc func(ctx context.Context) (oauth2.TokenSource, error)

// StaticSource always yields token.
func StaticSource(token string) SourceFunc {
	return func(context.Context) (oauth2.TokenSource, error) {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
	}
}

// GoogleSource uses application default credentials.
func GoogleSource(scopes ...string) SourceFunc {
	if len(scopes) == 0 {
		scopes = []string{"https://www.googleapis.com/auth/cloud-platform"}
	}
	return func(ctx context.Context) (oauth2.TokenSource, error) {
		return google.DefaultTokenSource(context.WithoutCancel(ctx), scopes...)
	}
}

func fetch(ctx context.Context, newSource SourceFunc) (*oauth2.Token, error) {
	src, err := newSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("token source: %w", err)
	}
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("fetch token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("fetch token: empty access token")
	}
	return tok, nil
}

// MemoryCache keeps the token in process until it expires or is invalidated.
type MemoryCache struct {
	mu        sync.Mutex
	newSource SourceFunc
	token     *oauth2.Token
}

func NewMemoryCache(newSource SourceFunc) *MemoryCache {
	return &MemoryCache{newSource: newSource}
}

func (c *MemoryCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token.AccessToken, nil
	}
	tok, err := fetch(ctx, c.newSource)
	if err != nil {
		return "", err
	}
	c.token = tok
	return tok.AccessToken, nil
}

func (c *MemoryCache) Invalidate(context.Context) {
	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
}

const (
	redisTokenKey   = "normalizer:token"
	defaultTokenTTL = 50 * time.Minute
	expiryMargin    = time.Minute
)

// RedisCache shares one token between API instances.
type RedisCache struct {
	client    *redis.Client
	newSource SourceFunc
	key       string
}

func NewRedisCache(client *redis.Client, newSource SourceFunc) *RedisCache {
	return &RedisCache{client: client, newSource: newSource, key: redisTokenKey}
}

// Get serves the shared token. A Redis outage degrades to fetching directly.
func (c *RedisCache) Get(ctx context.Context) (string, error) {
	cached, err := c.client.Get(ctx, c.key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}

	tok, err := fetch(ctx, c.newSource)
	if err != nil {
		return "", err
	}

	ttl := defaultTokenTTL
	if !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry) - expiryMargin
	}
	if ttl > 0 {
		_ = c.client.Set(ctx, c.key, tok.AccessToken, ttl).Err()
	}
	return tok.AccessToken, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, c.key).Err()
}
