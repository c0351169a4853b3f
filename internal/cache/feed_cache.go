package cache

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/curiohub/curiohub/internal/logger"
	"github.com/curiohub/curiohub/internal/metrics"
	"go.uber.org/zap"
)

// ErrMiss is returned by Store.Get for absent keys.
var ErrMiss = errors.New("cache: miss")

const (
	feedCacheName = "feed"
	generationKey = "feed:gen"
)

// Store is the subset of Redis the feed cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

// FeedKey identifies one cached page of a public listing.
type FeedKey struct {
	Kind   string
	Source string
	Tags   []string
	Limit  int
	Offset int
}

// FeedCache caches rendered feed pages. Entries are namespaced by a
// generation counter; Invalidate bumps the counter so every older page
// stops being addressable and ages out on its TTL.
//
// A nil *FeedCache is valid and caches nothing.
type FeedCache struct {
	store Store
	ttl   time.Duration
}

// NewFeedCache returns a cache over store with the given base TTL.
func NewFeedCache(store Store, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &FeedCache{store: store, ttl: ttl}
}

// Get returns the cached payload for key, if present.
func (fc *FeedCache) Get(ctx context.Context, key FeedKey) (string, bool) {
	if fc == nil {
		return "", false
	}
	val, err := fc.store.Get(ctx, fc.key(ctx, key))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.Log.Warn("Feed cache read failed", zap.Error(err))
		}
		metrics.RecordCacheMiss(feedCacheName)
		return "", false
	}
	metrics.RecordCacheHit(feedCacheName)
	return val, true
}

// Set stores payload under key with a jittered TTL. Failures are logged
// and otherwise ignored.
func (fc *FeedCache) Set(ctx context.Context, key FeedKey, payload string) {
	if fc == nil {
		return
	}
	if err := fc.store.SetEx(ctx, fc.key(ctx, key), payload, jitter(fc.ttl)); err != nil {
		logger.Log.Warn("Feed cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached page. Called when the set of listed
// submissions changes; upvote changes do not invalidate.
func (fc *FeedCache) Invalidate(ctx context.Context) {
	if fc == nil {
		return
	}
	if _, err := fc.store.Incr(ctx, generationKey); err != nil {
		logger.Log.Warn("Feed cache invalidation failed", zap.Error(err))
	}
}

func (fc *FeedCache) key(ctx context.Context, k FeedKey) string {
	gen, err := fc.store.Get(ctx, generationKey)
	if err != nil {
		gen = "0"
	}
	return "feed:" + gen + ":" + strconv.FormatUint(k.Hash(), 16)
}

// Hash returns a stable digest of k. Tag order and case do not matter.
func (k FeedKey) Hash() uint64 {
	tags := make([]string, 0, len(k.Tags))
	for _, t := range k.Tags {
		tags = append(tags, strings.ToLower(strings.TrimSpace(t)))
	}
	slices.Sort(tags)
	tags = slices.Compact(tags)

	source := strings.ToLower(k.Source)
	if source == "all" {
		source = ""
	}

	h := xxhash.NewS64(0)
	for _, part := range []string{k.Kind, source, strings.Join(tags, ","), strconv.Itoa(k.Limit), strconv.Itoa(k.Offset)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// jitter spreads expiry by up to ten percent either way.
func jitter(base time.Duration) time.Duration {
	spread := int64(base / 5)
	if spread <= 0 {
		return base
	}
	d := base + time.Duration(rand.Int64N(spread)-spread/2)
	if d <= 0 {
		return base
	}
	return d
}
