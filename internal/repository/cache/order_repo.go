package cache

import (
	"errors"
	"time"

	"dough-store/internal/models"
)

var ErrMiss = errors.New("cache miss")

// OrderCache keeps recently read orders keyed by payment session id.
type OrderCache struct {
	c *ShardedCache[models.Order]
}

func NewOrderCache(ttl time.Duration) *OrderCache {
	return &OrderCache{c: NewShardedCache[models.Order](WithTTL(ttl))}
}

func (o *OrderCache) PutOrder(sessionID string, ord models.Order) {
	o.c.Put(sessionID, ord)
}

func (o *OrderCache) GetOrder(sessionID string) (models.Order, error) {
	ord, ok := o.c.Get(sessionID)
	if !ok {
		return models.Order{}, ErrMiss
	}
	return ord, nil
}

func (o *OrderCache) DeleteOrder(sessionID string) {
	o.c.Delete(sessionID)
}

func (o *OrderCache) Close() {
	o.c.Close()
}
