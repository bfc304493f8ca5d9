package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

type entry[V any] struct {
	v       V
	expires time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

type shard[V any] struct {
	mu   sync.RWMutex
	data map[string]entry[V]
}

// ShardedCache is a TTL map split across power-of-two shards keyed by fnv hash.
type ShardedCache[V any] struct {
	shards []shard[V]
	ttl    time.Duration
	now    func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

type Option func(*options)

type options struct {
	shards int
	ttl    time.Duration
}

// WithShards sets the shard count, rounded up to a power of two.
func WithShards(n int) Option { return func(o *options) { o.shards = n } }

func WithTTL(ttl time.Duration) Option { return func(o *options) { o.ttl = ttl } }

func NewShardedCache[V any](opts ...Option) *ShardedCache[V] {
	o := options{shards: 16}
	for _, fn := range opts {
		fn(&o)
	}

	c := &ShardedCache[V]{
		shards: make([]shard[V], powerOfTwo(o.shards)),
		ttl:    o.ttl,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	for i := range c.shards {
		c.shards[i].data = make(map[string]entry[V])
	}

	if c.ttl > 0 {
		c.ticker = time.NewTicker(c.ttl / 2)
		go func() {
			for {
				select {
				case <-c.ticker.C:
					c.purge()
				case <-c.stop:
					return
				}
			}
		}()
	}
	return c
}

func powerOfTwo(n int) int {
	if n <= 0 {
		return 16
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (c *ShardedCache[V]) Close() {
	c.once.Do(func() {
		if c.ticker != nil {
			c.ticker.Stop()
		}
		close(c.stop)
	})
}

func (c *ShardedCache[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.shards[int(h.Sum32())&(len(c.shards)-1)]
}

func (c *ShardedCache[V]) Put(key string, v V) {
	e := entry[V]{v: v}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	s := c.shardFor(key)
	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
}

func (c *ShardedCache[V]) Get(key string) (V, bool) {
	var zero V
	s := c.shardFor(key)
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if e.expired(c.now()) {
		s.mu.Lock()
		if cur, ok := s.data[key]; ok && cur.expires.Equal(e.expires) {
			delete(s.data, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.v, true
}

func (c *ShardedCache[V]) Delete(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
}

func (c *ShardedCache[V]) Len() int {
	now := c.now()
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for _, e := range s.data {
			if !e.expired(now) {
				n++
			}
		}
		s.mu.RUnlock()
	}
	return n
}

func (c *ShardedCache[V]) purge() {
	now := c.now()
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k, e := range s.data {
			if e.expired(now) {
				delete(s.data, k)
			}
		}
		s.mu.Unlock()
	}
}
