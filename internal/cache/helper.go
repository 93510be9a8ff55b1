package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Aside implements the cache-aside pattern: on a hit, dest is populated from
// Redis; on a miss, fetch runs and its result is written back with the given
// TTL. A nil client or any cache failure falls through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	if data, err := client.Get(ctx, key).Bytes(); err == nil {
		if jerr := json.Unmarshal(data, dest); jerr == nil {
			return nil
		}
		// Corrupt entry, drop it and refetch.
		client.Del(ctx, key)
	}

	if err := fetch(); err != nil {
		return err
	}

	if data, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, data, ttl)
	}
	return nil
}
