package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close closes the client.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

// SnapshotKey is the redis key holding a cached ListAll result.
func SnapshotKey(collection string) string {
	return "academy:snapshot:" + collection
}

// Cached serves ListAll from redis and drops the snapshot on every write to
// the collection. Redis trouble degrades to the inner store.
type Cached struct {
	Store
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

// NewCached wraps inner. A non-positive ttl disables caching.
func NewCached(inner Store, rdb *redis.Client, ttl time.Duration, log *zap.Logger) Store {
	if rdb == nil || ttl <= 0 {
		return inner
	}
	return &Cached{Store: inner, rdb: rdb, ttl: ttl, log: log}
}

type cachedRecord struct {
	ID  string   `json:"id"`
	Doc Document `json:"doc"`
}

func (c *Cached) ListAll(ctx context.Context, collection string) ([]Record, error) {
	key := SnapshotKey(collection)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []cachedRecord
		if err := json.Unmarshal(raw, &cached); err == nil {
			out := make([]Record, len(cached))
			for i, r := range cached {
				out[i] = Record{ID: r.ID, Doc: r.Doc}
			}
			return out, nil
		}
		c.log.Warn("discarding corrupt snapshot", zap.String("collection", collection))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("snapshot cache read failed", zap.String("collection", collection), zap.Error(err))
	}

	recs, err := c.Store.ListAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	cached := make([]cachedRecord, len(recs))
	for i, r := range recs {
		cached[i] = cachedRecord{ID: r.ID, Doc: r.Doc}
	}
	if body, err := json.Marshal(cached); err == nil {
		if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil {
			c.log.Warn("snapshot cache write failed", zap.String("collection", collection), zap.Error(err))
		}
	}
	return recs, nil
}

func (c *Cached) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id, err := c.Store.Create(ctx, collection, doc)
	if err == nil {
		c.invalidate(ctx, collection)
	}
	return id, err
}

func (c *Cached) Update(ctx context.Context, collection, id string, doc Document) error {
	err := c.Store.Update(ctx, collection, id, doc)
	if err == nil {
		c.invalidate(ctx, collection)
	}
	return err
}

func (c *Cached) Upsert(ctx context.Context, collection, id string, doc Document) error {
	err := c.Store.Upsert(ctx, collection, id, doc)
	if err == nil {
		c.invalidate(ctx, collection)
	}
	return err
}

func (c *Cached) Delete(ctx context.Context, collection, id string) error {
	err := c.Store.Delete(ctx, collection, id)
	if err == nil {
		c.invalidate(ctx, collection)
	}
	return err
}

func (c *Cached) invalidate(ctx context.Context, collection string) {
	if err := c.rdb.Del(ctx, SnapshotKey(collection)).Err(); err != nil {
		c.log.Warn("snapshot invalidation failed", zap.String("collection", collection), zap.Error(err))
	}
}
