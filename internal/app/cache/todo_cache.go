package cache

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

const (
	completedPrefix = "CompletedPct:"
	pendingPrefix   = "PendingPct:"
	filterPrefix    = "filter:"
)

type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
}

func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// TodoCache memoizes per-user percentages and filter results.
//
// Every user has a generation counter. Invalidate bumps it, and a computation
// only stores its result if the generation it started under is still current,
// so a read racing a write never re-populates a stale value.
//
// filterKeys indexes the filter entries stored per user. It is only touched
// while the user's generation entry is locked.
type TodoCache struct {
	percentages *sturdyc.Client[float64]
	filters     *sturdyc.Client[[]domain.Todo]
	group       singleflight.Group
	generations *xsync.MapOf[int64, uint64]
	filterKeys  *xsync.MapOf[int64, []string]
}

var _ ports.TodoCache = (*TodoCache)(nil)

func NewTodoCache(cfg Config) *TodoCache {
	defaults := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaults.Capacity
	}
	if cfg.NumShards <= 0 {
		cfg.NumShards = defaults.NumShards
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.EvictionPercentage <= 0 || cfg.EvictionPercentage > 100 {
		cfg.EvictionPercentage = defaults.EvictionPercentage
	}

	return &TodoCache{
		percentages: sturdyc.New[float64](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage),
		filters:     sturdyc.New[[]domain.Todo](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage),
		generations: xsync.NewMapOf[int64, uint64](),
		filterKeys:  xsync.NewMapOf[int64, []string](),
	}
}

func (c *TodoCache) CompletedPercentage(ctx context.Context, userID int64, compute func(context.Context) (float64, error)) (float64, error) {
	return memoize(ctx, c, c.percentages, CompletedKey(userID), userID, compute, nil)
}

func (c *TodoCache) PendingPercentage(ctx context.Context, userID int64, compute func(context.Context) (float64, error)) (float64, error) {
	return memoize(ctx, c, c.percentages, PendingKey(userID), userID, compute, nil)
}

func (c *TodoCache) Filter(ctx context.Context, userID int64, filter domain.TodoFilter, compute func(context.Context) ([]domain.Todo, error)) ([]domain.Todo, error) {
	key := FilterKey(userID, filter)
	todos, err := memoize(ctx, c, c.filters, key, userID, compute, func() {
		keys, _ := c.filterKeys.Load(userID)
		if !slices.Contains(keys, key) {
			c.filterKeys.Store(userID, append(keys, key))
		}
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(todos), nil
}

// Invalidate drops both percentages and every filter result of the user.
func (c *TodoCache) Invalidate(userID int64) {
	c.generations.Compute(userID, func(generation uint64, _ bool) (uint64, bool) {
		c.percentages.Delete(CompletedKey(userID))
		c.percentages.Delete(PendingKey(userID))
		keys, _ := c.filterKeys.LoadAndDelete(userID)
		for _, key := range keys {
			c.filters.Delete(key)
		}
		zap.L().Debug("todo cache invalidated", zap.Int64("user_id", userID), zap.Int("filter_entries", len(keys)))
		return generation + 1, false
	})
}

func (c *TodoCache) generation(userID int64) uint64 {
	generation, _ := c.generations.Load(userID)
	return generation
}

func memoize[T any](
	ctx context.Context,
	c *TodoCache,
	client *sturdyc.Client[T],
	key string,
	userID int64,
	compute func(context.Context) (T, error),
	stored func(),
) (T, error) {
	if value, ok := client.Get(key); ok {
		return value, nil
	}

	generation := c.generation(userID)
	flightKey := key + "#" + strconv.FormatUint(generation, 10)
	value, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.generations.Compute(userID, func(current uint64, _ bool) (uint64, bool) {
			if current == generation {
				client.Set(key, computed)
				if stored != nil {
					stored()
				}
			}
			return current, false
		})
		return computed, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}

func CompletedKey(userID int64) string {
	return completedPrefix + strconv.FormatInt(userID, 10)
}

func PendingKey(userID int64) string {
	return pendingPrefix + strconv.FormatInt(userID, 10)
}

func FilterKey(userID int64, filter domain.TodoFilter) string {
	return filterPrefix + strconv.FormatInt(userID, 10) + ":" + filter.Key()
}
