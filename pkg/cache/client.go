package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"shophub-api/pkg/storage"
)

// KeyPrefix namespaces durable cache entries so they never collide with the
// cart snapshot sharing the same store.
const KeyPrefix = "shophub_cache_"

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultTTL         = 30 * time.Minute
)

// ErrUnavailable marks a resolve that exhausted every fetch attempt.
var ErrUnavailable = errors.New("resource unavailable")

// entry is the in-process tier representation.
type entry struct {
	data      json.RawMessage
	timestamp time.Time
}

// persistedEntry is the durable envelope: payload plus epoch-ms fetch time.
type persistedEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Client resolves logical resource keys to JSON payloads through a two-tier
// cache (in-process map, then durable KV) with a bounded-retry network
// fallback. Parallel resolves for the same key are not de-duplicated; each
// races through the lookup chain independently.
type Client struct {
	httpClient *http.Client
	durable    storage.KV

	mu     sync.Mutex
	memory map[string]entry

	// MaxAttempts and BaseDelay tune the retry loop; tests shrink the delay.
	MaxAttempts int
	BaseDelay   time.Duration

	now func() time.Time
}

func NewClient(durable storage.KV) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		durable:     durable,
		memory:      make(map[string]entry),
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
		now:         time.Now,
	}
}

// Resolve returns the cached payload for key when a tier holds a valid entry
// (valid iff now-timestamp < ttl), otherwise fetches url with retries and
// writes the result to both tiers. ttl <= 0 uses the default.
func (c *Client) Resolve(ctx context.Context, key, url string, ttl time.Duration) (json.RawMessage, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	if data, ok := c.fromMemory(key, ttl); ok {
		log.Printf("Cache HIT (memory) for key: %s", key)
		return data, nil
	}

	if data, ok := c.fromDurable(key, ttl); ok {
		log.Printf("Cache HIT (durable) for key: %s", key)
		return data, nil
	}

	log.Printf("Cache MISS for key: %s", key)
	return c.fetch(ctx, key, url)
}

// fromMemory serves the in-process tier, evicting expired entries on access.
func (c *Client) fromMemory(key string, ttl time.Duration) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.memory[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(ent.timestamp) >= ttl {
		delete(c.memory, key)
		return nil, false
	}
	return ent.data, true
}

// fromDurable serves the durable tier, promoting valid entries into memory.
// Corrupt or expired entries are deleted and treated as misses.
func (c *Client) fromDurable(key string, ttl time.Duration) (json.RawMessage, bool) {
	if c.durable == nil {
		return nil, false
	}

	raw, err := c.durable.Get(KeyPrefix + key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("Cache read error for key %s: %v", key, err)
		}
		return nil, false
	}

	var persisted persistedEntry
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		log.Printf("Discarding corrupt cache entry for key %s: %v", key, err)
		_ = c.durable.Delete(KeyPrefix + key)
		return nil, false
	}

	fetchedAt := time.UnixMilli(persisted.Timestamp)
	if c.now().Sub(fetchedAt) >= ttl {
		_ = c.durable.Delete(KeyPrefix + key)
		return nil, false
	}

	c.mu.Lock()
	c.memory[key] = entry{data: persisted.Data, timestamp: fetchedAt}
	c.mu.Unlock()

	return persisted.Data, true
}

// fetch performs up to maxAttempts GETs with a linear backoff of
// attempt*baseDelay between failures. The terminal error names the attempt
// count and the last underlying failure.
func (c *Client) fetch(ctx context.Context, key, url string) (json.RawMessage, error) {
	var lastErr error

	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		log.Printf("Fetching %s (attempt %d/%d)", url, attempt, c.MaxAttempts)

		data, err := c.fetchOnce(ctx, url)
		if err == nil {
			c.store(key, data)
			return data, nil
		}
		lastErr = err
		log.Printf("Fetch attempt %d failed for key %s: %v", attempt, key, err)

		if attempt == c.MaxAttempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * c.BaseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: failed to load data after %d attempts: %v", ErrUnavailable, c.MaxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}
	return json.RawMessage(body), nil
}

// store writes a fresh payload to both tiers. Durable write failures are
// logged and swallowed so they never fail the resolve.
func (c *Client) store(key string, data json.RawMessage) {
	fetchedAt := c.now()

	c.mu.Lock()
	c.memory[key] = entry{data: data, timestamp: fetchedAt}
	c.mu.Unlock()

	if c.durable == nil {
		return
	}
	raw, err := json.Marshal(persistedEntry{Data: data, Timestamp: fetchedAt.UnixMilli()})
	if err != nil {
		log.Printf("Cache write error for key %s: %v", key, err)
		return
	}
	if err := c.durable.Set(KeyPrefix+key, string(raw)); err != nil {
		log.Printf("Cache write error for key %s: %v", key, err)
	}
}

// Invalidate drops a single key from both tiers.
func (c *Client) Invalidate(key string) {
	c.mu.Lock()
	delete(c.memory, key)
	c.mu.Unlock()
	if c.durable != nil {
		_ = c.durable.Delete(KeyPrefix + key)
	}
}

// FlushMemory empties the in-process tier; the durable tier is managed by
// its own admin surface.
func (c *Client) FlushMemory() {
	c.mu.Lock()
	c.memory = make(map[string]entry)
	c.mu.Unlock()
}

// MemoryLen reports the in-process tier size for the stats endpoint.
func (c *Client) MemoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.memory)
}
