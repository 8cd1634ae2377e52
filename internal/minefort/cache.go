package minefort

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a server list snapshot stays fresh.
const DefaultCacheTTL = 60 * time.Second

// CacheObserver receives cache telemetry. Implemented by internal/metrics.
type CacheObserver interface {
	ObserveCache(hit bool)
}

// ServerCache bounds the rate of ListServers calls from periodic callers.
// It holds the latest snapshot and only refreshes when the snapshot is
// missing, older than the TTL, or a caller forces it. Refresh failures are
// logged and leave the previous snapshot in place; GetServers never fails.
type ServerCache struct {
	client *Client
	ttl    time.Duration
	obs    CacheObserver

	mu        sync.Mutex
	servers   []ServerSummary
	fetchedAt time.Time
}

// NewServerCache creates a cache in front of client. ttl values <= 0 fall
// back to DefaultCacheTTL.
func NewServerCache(client *Client, ttl time.Duration) *ServerCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ServerCache{client: client, ttl: ttl}
}

// SetObserver attaches cache telemetry. Must be called before the cache is
// shared across goroutines.
func (sc *ServerCache) SetObserver(obs CacheObserver) {
	sc.obs = obs
}

// GetServers returns the cached server list, refreshing it first when the
// cache is empty, stale, or forceRefresh is set. The returned slice
// preserves the provider's response order; callers rely on "first server"
// semantics. On a failed refresh the previous snapshot is returned, or an
// empty list when there has never been a successful fetch.
func (sc *ServerCache) GetServers(ctx context.Context, forceRefresh bool) []ServerSummary {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	fresh := sc.servers != nil && time.Since(sc.fetchedAt) <= sc.ttl
	if fresh && !forceRefresh {
		if sc.obs != nil {
			sc.obs.ObserveCache(true)
		}
		return sc.servers
	}

	if sc.obs != nil {
		sc.obs.ObserveCache(false)
	}

	servers, err := sc.client.ListServers(ctx)
	if err != nil {
		slog.Warn("server list refresh failed, serving previous snapshot",
			"error", err, "age", time.Since(sc.fetchedAt).Round(time.Second))
		if sc.servers == nil {
			return []ServerSummary{}
		}
		return sc.servers
	}

	sc.servers = servers
	sc.fetchedAt = time.Now()
	return sc.servers
}

// Age returns how old the current snapshot is, and false when no snapshot
// has been fetched yet.
func (sc *ServerCache) Age() (time.Duration, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.servers == nil {
		return 0, false
	}
	return time.Since(sc.fetchedAt), true
}
