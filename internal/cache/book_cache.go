package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "booktracker/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyList = "book:list:"

// BookCache caches each user's book list in Redis.
type BookCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBookCache returns a new BookCache.
func NewBookCache(rdb *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{rdb: rdb, ttl: ttl}
}

func listKey(ownerID int64) string {
	return keyList + strconv.FormatInt(ownerID, 10)
}

// GetList returns the cached list or nil if miss. A cached empty list is
// returned as a non-nil empty slice.
func (c *BookCache) GetList(ctx context.Context, ownerID int64) ([]dom.Book, error) {
	b, err := c.rdb.Get(ctx, listKey(ownerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Book{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *BookCache) SetList(ctx context.Context, ownerID int64, list []dom.Book) error {
	if list == nil {
		list = []dom.Book{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(ownerID), b, c.ttl).Err()
}

// Invalidate drops the owner's cached list (called on every write).
func (c *BookCache) Invalidate(ctx context.Context, ownerID int64) error {
	return c.rdb.Del(ctx, listKey(ownerID)).Err()
}
