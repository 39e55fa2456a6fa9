package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"pms/shared/cache"
	"sync"
	"time"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Cache is an in-process cache.RedisCache with the same encoding and miss
// semantics as the Redis implementation.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: map[string]entry{},
		now:     time.Now,
	}
}

var _ cache.RedisCache = (*Cache)(nil)

func (c *Cache) Save(_ context.Context, key string, value any, duration int) error {
	payload, err := encode(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = c.entry(payload, duration)

	return nil
}

func (c *Cache) SaveIfAbsent(_ context.Context, key string, value any, duration int) (bool, error) {
	payload, err := encode(value)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.entries[key]; ok && !current.expired(c.now()) {
		return false, nil
	}

	c.entries[key] = c.entry(payload, duration)

	return true, nil
}

func (c *Cache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	current, ok := c.entries[key]
	c.mu.Unlock()

	if !ok || current.expired(c.now()) {
		return fmt.Errorf("failed to get cache value: %w", cache.Nil)
	}

	if v, ok := value.(*string); ok {
		*v = string(current.payload)

		return nil
	}

	if err := json.Unmarshal(current.payload, value); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes every key matching a glob pattern such as "room:list:*".
func (c *Cache) Clear(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid cache pattern %q: %w", pattern, err)
		}

		if matched {
			delete(c.entries, key)
		}
	}

	return nil
}

// Keys lists the live keys.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))

	for key, current := range c.entries {
		if !current.expired(c.now()) {
			keys = append(keys, key)
		}
	}

	return keys
}

func (c *Cache) entry(payload []byte, duration int) entry {
	e := entry{payload: payload}
	if duration > 0 {
		e.expiresAt = c.now().Add(time.Duration(duration) * time.Second)
	}

	return e
}

func encode(value any) ([]byte, error) {
	if v, ok := value.(string); ok {
		return []byte(v), nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return payload, nil
}
