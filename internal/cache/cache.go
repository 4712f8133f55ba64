// Package cache memoizes provider calls for the lifetime of a session.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phuslu/log"
)

// Cache is a byte-oriented key/value cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key builds a cache key from a function name and its arguments.
func Key(fn string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, fn)
	for _, a := range args {
		switch v := a.(type) {
		case []string:
			parts = append(parts, strings.Join(v, ","))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ":")
}

// Memoize returns the cached value for key, or calls fn and caches its
// result. Errors from fn are returned and never cached. A failing cache is
// logged and bypassed.
func Memoize[T any](ctx context.Context, c Cache, key string, fn func() (T, error)) (T, error) {
	if c == nil {
		return fn()
	}

	if data, ok, err := c.Get(ctx, key); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache get failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		log.Warn().Str("key", key).Msg("cache entry undecodable, refreshing")
	}

	v, err := fn()
	if err != nil {
		return v, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache encode failed")
		return v, nil
	}
	if err := c.Set(ctx, key, data); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache set failed")
	}
	return v, nil
}
