// Package rediscache caches the full task list of a TaskRepository in Redis.
package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/runoshun/tasklist/internal/domain"
)

// DefaultKey is the Redis key holding the cached list.
const DefaultKey = "tasklist:tasks"

// VersionKey is the Redis key counting evictions of the cached list.
const VersionKey = DefaultKey + ":version"

// Cache wraps a TaskRepository with a Redis-backed cache for List.
// Every successful mutation evicts the cached list, since a single create,
// move or delete can shift the order of every other task.
//
// Evictions also bump a version counter. A list read from the base
// repository is only cached if the counter did not move during the read,
// so a list fetched just before a concurrent mutation is never stored.
type Cache struct {
	base       domain.TaskRepository
	redis      *redis.Client
	key        string
	versionKey string
	ttl        time.Duration
}

// New creates a caching wrapper around base. A nil client or a zero TTL
// disables caching.
func New(base domain.TaskRepository, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("rediscache.New: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{
		base:  base,
		redis: client,
		key:        DefaultKey,
		versionKey: VersionKey,
		ttl:        ttl,
	}
}

// Dial parses a redis:// URL and returns a connected client.
func Dial(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// List returns the cached list, loading it from the base repository on a miss.
func (c *Cache) List(ctx context.Context) ([]domain.Task, error) {
	if tasks, ok := c.load(ctx); ok {
		return tasks, nil
	}

	version, versionErr := c.version(ctx)
	tasks, err := c.base.List(ctx)
	if err != nil {
		return nil, err
	}

	if versionErr == nil {
		c.store(ctx, version, tasks)
	}
	return tasks, nil
}

// Get reads through to the base repository.
func (c *Cache) Get(ctx context.Context, id int) (domain.Task, error) {
	return c.base.Get(ctx, id)
}

// Create creates the task and evicts the cached list.
func (c *Cache) Create(ctx context.Context, p domain.Patch) (domain.Task, error) {
	task, err := c.base.Create(ctx, p)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return task, nil
}

// Update updates the task and evicts the cached list.
func (c *Cache) Update(ctx context.Context, id int, p domain.Patch) (domain.Task, error) {
	task, err := c.base.Update(ctx, id, p)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return task, nil
}

// Delete deletes the task and evicts the cached list.
func (c *Cache) Delete(ctx context.Context, id int) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) load(ctx context.Context) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the base repository without failing.
			_ = c.redis.Del(ctx, c.key).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, c.key).Err()
		return nil, false
	}
	return tasks, true
}

// version returns the current eviction counter, "" if none was recorded yet.
func (c *Cache) version(ctx context.Context) (string, error) {
	if c.redis == nil {
		return "", errNoRedis
	}
	v, err := c.redis.Get(ctx, c.versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// store caches tasks unless the list was evicted since version was read.
func (c *Cache) store(ctx context.Context, version string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, c.versionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, data, c.ttl)
			return nil
		})
		return err
	}, c.versionKey)
}

func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey)
		pipe.Del(ctx, c.key)
		return nil
	})
}

var (
	errNoRedis = errors.New("redis disabled")
	errStale   = errors.New("list evicted while it was read")
)

// Ensure Cache implements TaskRepository.
var _ domain.TaskRepository = (*Cache)(nil)
