package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/civicmap/internal/core/ports"
)

// DefaultPrefix namespaces every key so one instance can serve several apps.
const DefaultPrefix = "civicmap:"

// Cache implements ports.CacheService on Valkey. Reads go through the
// client-side cache so repeated geocoder answers skip the network.
type Cache struct {
	client valkey.Client
	prefix string
	local  time.Duration
}

var _ ports.CacheService = (*Cache)(nil)

// Options configure a Cache.
type Options struct {
	Addr   string
	Prefix string
	// LocalTTL bounds how long a read is served from client memory. Zero
	// disables client-side caching, for servers without RESP3.
	LocalTTL time.Duration
}

// New connects to Valkey.
func New(opts Options) (*Cache, error) {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{opts.Addr},
		DisableCache: opts.LocalTTL <= 0,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Cache{client: client, prefix: opts.Prefix, local: opts.LocalTTL}, nil
}

// Key returns the stored key for a cache key.
func (c *Cache) Key(key string) string {
	return Key(c.prefix, key)
}

// Key joins prefix and key, adding the separator when prefix lacks one.
func Key(prefix, key string) string {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix + key
}

// Get returns the value stored under key. A missing key yields a
// valkey nil error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var resp valkey.ValkeyResult
	if c.local > 0 {
		resp = c.client.DoCache(ctx, c.client.B().Get().Key(c.Key(key)).Cache(), c.local)
	} else {
		resp = c.client.Do(ctx, c.client.B().Get().Key(c.Key(key)).Build())
	}
	if err := resp.Error(); err != nil {
		return nil, err
	}
	return resp.AsBytes()
}

// Set stores value for ttlSeconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	cmd := c.client.B().Set().Key(c.Key(key)).Value(valkey.BinaryString(value)).Ex(time.Duration(ttlSeconds) * time.Second).Build()
	return c.client.Do(ctx, cmd).Error()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(c.Key(key)).Build()).Error()
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
