package db

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dori/leadboard/internal/logging"
	"github.com/dori/leadboard/internal/model"
)

// ErrNoHistory is returned by history calls on a cache whose backend keeps
// no revisions
var ErrNoHistory = errors.New("store keeps no history")

type backend interface {
	Load(ctx context.Context, key string) (*model.Document, error)
	Save(ctx context.Context, key string, doc model.Document) (int64, error)
}

// Cache wraps a document store with a Redis read-through copy of each
// document. Redis failures never fail a call; the backend is the source of
// truth.
type Cache struct {
	db    *DB
	base  backend
	redis *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCache creates a caching wrapper around base using the provided Redis
// client and TTL
func NewCache(base backend, client *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Cache {
	if base == nil {
		panic("db.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if log == nil {
		log = logging.Discard()
	}

	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
		log:   log,
	}
	if d, ok := base.(*DB); ok {
		c.db = d
	}
	return c
}

// Load returns the cached document, falling back to the backend on a miss
func (c *Cache) Load(ctx context.Context, key string) (*model.Document, error) {
	if doc, ok := c.loadFromCache(ctx, key); ok {
		return doc, nil
	}

	doc, err := c.base.Load(ctx, key)
	if err != nil || doc == nil {
		return doc, err
	}

	c.store(ctx, key, *doc)
	return doc, nil
}

// Save writes through to the backend, then refreshes the cached copy
func (c *Cache) Save(ctx context.Context, key string, doc model.Document) (int64, error) {
	rev, err := c.base.Save(ctx, key, doc)
	if err != nil {
		// The cached copy may now be newer than the backend
		c.evict(ctx, key)
		return 0, err
	}

	c.store(ctx, key, doc)
	return rev, nil
}

// History lists the revisions kept by the underlying DB
func (c *Cache) History(ctx context.Context, key string, limit int) ([]Revision, error) {
	if c.db == nil {
		return nil, ErrNoHistory
	}
	return c.db.History(ctx, key, limit)
}

// Restore restores a revision on the underlying DB and drops the cached copy
func (c *Cache) Restore(ctx context.Context, key string, revision int64) (model.Document, int64, error) {
	if c.db == nil {
		return model.Document{}, 0, ErrNoHistory
	}
	doc, rev, err := c.db.Restore(ctx, key, revision)
	if err != nil {
		return doc, rev, err
	}
	c.evict(ctx, key)
	return doc, rev, nil
}

func (c *Cache) loadFromCache(ctx context.Context, key string) (*model.Document, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, documentCacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).WithField("key", key).Warn("redis read failed")
			_ = c.redis.Del(ctx, documentCacheKey(key)).Err()
		}
		return nil, false
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		_ = c.redis.Del(ctx, documentCacheKey(key)).Err()
		return nil, false
	}
	return &doc, true
}

func (c *Cache) store(ctx context.Context, key string, doc model.Document) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, documentCacheKey(key), data, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis write failed")
	}
}

func (c *Cache) evict(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, documentCacheKey(key)).Result()
}

func documentCacheKey(key string) string {
	return "leadboard:doc:" + key
}
