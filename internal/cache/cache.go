package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

const (
	keyPrefix     = "search:"
	generationKey = keyPrefix + "generation"
)

var cacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "search_cache_requests_total",
		Help: "Total number of search cache lookups by result",
	},
	[]string{"result"},
)

// SearchCache is a Redis read-through cache of search responses keyed by the
// canonical filter state. Entries belong to a generation; Invalidate starts a
// new generation, so every older entry becomes unreachable and expires by TTL.
type SearchCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewSearchCache creates a cache storing entries for ttl.
func NewSearchCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *SearchCache {
	return &SearchCache{client: client, ttl: ttl, logger: logger}
}

// Key returns the cache key of a search in the given generation.
func Key(generation int64, fs domain.FilterState) string {
	sum := sha256.Sum256([]byte(fs.Encode().Encode()))
	return keyPrefix + "v" + strconv.FormatInt(generation, 10) + ":" + hex.EncodeToString(sum[:])
}

func (c *SearchCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// NoGeneration is returned by Get when the generation could not be read.
// Set ignores it.
const NoGeneration int64 = -1

// Get returns the cached response for fs along with the generation it looked
// in. A miss still reports the generation so the caller can Set the fresh
// response into it. Cache failures are logged and reported as a miss.
func (c *SearchCache) Get(ctx context.Context, fs domain.FilterState) (*domain.SearchResponse, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.fail(ctx, "get", err)
		return nil, NoGeneration, false
	}

	data, err := c.client.Get(ctx, Key(gen, fs)).Bytes()
	if errors.Is(err, redis.Nil) {
		cacheRequests.WithLabelValues("miss").Inc()
		return nil, gen, false
	}
	if err != nil {
		c.fail(ctx, "get", fmt.Errorf("redis get search: %w", err))
		return nil, gen, false
	}

	var resp domain.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.fail(ctx, "get", fmt.Errorf("unmarshal search response: %w", err))
		return nil, gen, false
	}

	cacheRequests.WithLabelValues("hit").Inc()
	return &resp, gen, true
}

// Set stores resp for fs in generation gen, the one observed by Get before
// the search ran. A write invalidating the cache meanwhile moves readers to
// a newer generation, so a response computed before it is never served.
func (c *SearchCache) Set(ctx context.Context, gen int64, fs domain.FilterState, resp *domain.SearchResponse) {
	if gen < 0 {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		c.fail(ctx, "set", fmt.Errorf("marshal search response: %w", err))
		return
	}

	if err := c.client.Set(ctx, Key(gen, fs), data, c.ttl).Err(); err != nil {
		c.fail(ctx, "set", fmt.Errorf("redis set search: %w", err))
	}
}

// Invalidate makes every cached response unreachable.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr generation: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (c *SearchCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SearchCache) fail(ctx context.Context, op string, err error) {
	cacheRequests.WithLabelValues("error").Inc()
	c.logger.WarnContext(ctx, "search cache unavailable",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
