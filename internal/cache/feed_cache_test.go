package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	fail error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memStore) SetEx(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return 0, m.fail
	}
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func TestFeedKeyHashIsOrderInsensitive(t *testing.T) {
	a := FeedKey{Kind: "feed", Source: "YouTube", Tags: []string{"science", "Art"}, Limit: 20}
	b := FeedKey{Kind: "feed", Source: "youtube", Tags: []string{"art", "science", "science"}, Limit: 20}
	assert.Equal(t, a.Hash(), b.Hash())

	all := FeedKey{Kind: "feed", Source: "all", Limit: 20}
	none := FeedKey{Kind: "feed", Limit: 20}
	assert.Equal(t, all.Hash(), none.Hash())

	other := FeedKey{Kind: "discover", Source: "youtube", Tags: []string{"art", "science"}, Limit: 20}
	assert.NotEqual(t, a.Hash(), other.Hash())

	paged := a
	paged.Offset = 20
	assert.NotEqual(t, a.Hash(), paged.Hash())
}

func TestFeedCacheRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	fc := NewFeedCache(store, time.Minute)
	key := FeedKey{Kind: "feed", Limit: 20}

	_, ok := fc.Get(ctx, key)
	assert.False(t, ok)

	fc.Set(ctx, key, `[{"id":"1"}]`)
	got, ok := fc.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, got)

	fc.Invalidate(ctx)
	_, ok = fc.Get(ctx, key)
	assert.False(t, ok)
}

func TestFeedCacheTTLJitter(t *testing.T) {
	store := newMemStore()
	fc := NewFeedCache(store, 10*time.Minute)
	fc.Set(context.Background(), FeedKey{Kind: "feed"}, "x")

	for _, ttl := range store.ttls {
		assert.GreaterOrEqual(t, ttl, 9*time.Minute)
		assert.LessOrEqual(t, ttl, 11*time.Minute)
	}
}

func TestFeedCacheStoreFailuresAreSoft(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("connection refused")
	fc := NewFeedCache(store, time.Minute)

	fc.Set(context.Background(), FeedKey{Kind: "feed"}, "x")
	fc.Invalidate(context.Background())
	_, ok := fc.Get(context.Background(), FeedKey{Kind: "feed"})
	assert.False(t, ok)
}

func TestNilFeedCache(t *testing.T) {
	var fc *FeedCache
	fc.Set(context.Background(), FeedKey{}, "x")
	fc.Invalidate(context.Background())
	_, ok := fc.Get(context.Background(), FeedKey{})
	assert.False(t, ok)
}
