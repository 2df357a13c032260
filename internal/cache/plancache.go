// Package cache provides a redis-backed cache of resolved transmute chains,
// so a server handling repeated identical plan requests can skip re-running
// the bidirectional search.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nyxwell/transmute/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "transmute:plan:"

// PlanCache caches the edge-name sequence of a resolved chain, keyed by the
// planning request's (src category, src tags, dst category, dst tags,
// banned edge names) tuple. It stores names rather than live *Edge pointers
// so a cache entry survives a server restart; the caller is responsible for
// resolving names back to edges (e.g. via transmute.Registry.EdgeByName).
type PlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a PlanCache. ttl of zero means entries never expire on their
// own (they still go away on the next Invalidate or redis eviction).
func New(cfg config.RedisConfig, ttl time.Duration) (*PlanCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	opts.DB = cfg.DB
	opts.PoolSize = cfg.PoolSize

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &PlanCache{client: client, ttl: ttl}, nil
}

// NewWithClient wraps an already-constructed redis client (e.g. pointed at a
// miniredis instance in tests).
func NewWithClient(client *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{client: client, ttl: ttl}
}

// Close releases the underlying redis connection pool.
func (c *PlanCache) Close() error {
	return c.client.Close()
}

// Key identifies one planning request: the source/destination categories,
// the tag sets each names (as string slices, since this package has no
// dependency on pkg/transmute's opaque Tag type), and the set of edge names
// currently banned.
type Key struct {
	SrcCat  string
	SrcTags []string
	DstCat  string
	DstTags []string
	Banned  []string
}

func (k Key) redisKey() string {
	srcTags := append([]string(nil), k.SrcTags...)
	dstTags := append([]string(nil), k.DstTags...)
	banned := append([]string(nil), k.Banned...)
	sort.Strings(srcTags)
	sort.Strings(dstTags)
	sort.Strings(banned)
	return keyPrefix + k.SrcCat + "|" + strings.Join(srcTags, ",") +
		">" + k.DstCat + "|" + strings.Join(dstTags, ",") +
		"!" + strings.Join(banned, ",")
}

// Get returns the cached chain's edge names for key, or ok=false on a miss.
func (c *PlanCache) Get(ctx context.Context, key Key) (names []string, ok bool, err error) {
	raw, err := c.client.Get(ctx, key.redisKey()).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if unmarshalErr := json.Unmarshal(raw, &names); unmarshalErr != nil {
		return nil, false, unmarshalErr
	}
	return names, true, nil
}

// Put stores the resolved chain's edge names under key.
func (c *PlanCache) Put(ctx context.Context, key Key, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.redisKey(), raw, c.ttl).Err()
}

// Stats returns the number of chains currently cached. It exists for the
// periodic housekeeping job: redis expires individual entries on its own
// via their TTL, but a long-lived server still wants visibility into how
// large the cache has grown.
func (c *PlanCache) Stats(ctx context.Context) (count int, err error) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count, iter.Err()
}

// Invalidate drops every cached entry. internal/httpapi calls this after
// every edge registered over HTTP, since a newly registered edge can change which chain
// is optimal for a request that used to resolve differently (or not at
// all).
func (c *PlanCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
