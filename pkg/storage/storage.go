package storage

import "errors"

// ErrNotFound is returned by Get when the key has no value. Callers treat it
// as a cache miss, never as a failure.
var ErrNotFound = errors.New("storage: key not found")

// KV is the durable string-keyed, string-valued store shared by the fetch
// cache and the cart snapshot. Implementations degrade gracefully: a broken
// backend returns errors without crashing callers, who fall back to fetching
// or starting empty.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
