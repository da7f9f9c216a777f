package normalize

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// countingSource issues tok-1, tok-2, ... and counts how often it was built.
type countingSource struct {
	built  int
	issued int
	expiry time.Time
}

func (s *countingSource) newSource(context.Context) (oauth2.TokenSource, error) {
	s.built++
	return s, nil
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	s.issued++
	return &oauth2.Token{AccessToken: fmt.Sprintf("tok-%d", s.issued), Expiry: s.expiry}, nil
}

func TestMemoryCache_CachesUntilInvalidated(t *testing.T) {
	src := &countingSource{expiry: time.Now().Add(time.Hour)}
	cache := NewMemoryCache(src.newSource)
	ctx := context.Background()

	tok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, src.built)

	cache.Invalidate(ctx)
	tok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, src.built)
}

func TestMemoryCache_RefetchesExpired(t *testing.T) {
	src := &countingSource{expiry: time.Now().Add(-time.Minute)}
	cache := NewMemoryCache(src.newSource)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	tok, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestMemoryCache_SourceError(t *testing.T) {
	cache := NewMemoryCache(func(context.Context) (oauth2.TokenSource, error) {
		return nil, errors.New("no credentials")
	})
	_, err := cache.Get(context.Background())
	assert.ErrorContains(t, err, "no credentials")
}

func TestStaticSource(t *testing.T) {
	cache := NewMemoryCache(StaticSource("static-token"))
	tok, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-token", tok)

	_, err = NewMemoryCache(StaticSource("")).Get(context.Background())
	assert.Error(t, err)
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, s
}

func TestRedisCache_SharesToken(t *testing.T) {
	client, s := setupTestRedis(t)
	ctx := context.Background()

	src := &countingSource{expiry: time.Now().Add(30 * time.Minute)}
	first := NewRedisCache(client, src.newSource)
	second := NewRedisCache(client, src.newSource)

	tok, err := first.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok, err = second.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok, "second instance reads the shared token")
	assert.Equal(t, 1, src.issued)

	ttl := s.TTL(redisTokenKey)
	assert.True(t, ttl > 28*time.Minute && ttl <= 29*time.Minute, "ttl %s", ttl)

	second.Invalidate(ctx)
	assert.False(t, s.Exists(redisTokenKey))

	tok, err = first.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestRedisCache_Expires(t *testing.T) {
	client, s := setupTestRedis(t)
	ctx := context.Background()

	src := &countingSource{}
	cache := NewRedisCache(client, src.newSource)

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultTokenTTL, s.TTL(redisTokenKey))

	s.FastForward(defaultTokenTTL + time.Second)
	tok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
}

func TestRedisCache_RedisDown(t *testing.T) {
	client, s := setupTestRedis(t)
	s.Close()

	src := &countingSource{}
	tok, err := NewRedisCache(client, src.newSource).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}
