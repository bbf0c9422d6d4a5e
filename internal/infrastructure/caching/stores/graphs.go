// Package stores provides concrete cache store implementations
package stores

import (
	"strconv"
	"strings"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/caching/types"
)

// GraphStore caches analytics graph fragments with a fixed TTL.
type GraphStore struct {
	cache *types.GraphCache
	ttl   time.Duration
	now   func() time.Time
}

// NewGraphStore creates a new graph cache store. A non-positive ttl disables caching.
func NewGraphStore(ttl time.Duration) *GraphStore {
	return &GraphStore{
		cache: &types.GraphCache{Chunks: make(map[string]*types.GraphChunk)},
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// BuildKey creates a unique key from the graph kind and its parameters.
func BuildKey(kind string, params ...int64) string {
	var b strings.Builder
	b.WriteString(kind)
	for _, p := range params {
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(p, 10))
	}
	return b.String()
}

// Get returns a cached fragment if present and fresh.
func (gs *GraphStore) Get(key string) (string, bool) {
	if gs.ttl <= 0 {
		return "", false
	}

	gs.cache.Mu.Lock()
	defer gs.cache.Mu.Unlock()

	chunk, exists := gs.cache.Chunks[key]
	if !exists || gs.now().Sub(chunk.LastUpdated) > gs.ttl {
		gs.cache.Misses++
		return "", false
	}
	gs.cache.Hits++
	return chunk.Body, true
}

// Set stores a fragment.
func (gs *GraphStore) Set(kind, key, body string) {
	if gs.ttl <= 0 {
		return
	}

	gs.cache.Mu.Lock()
	defer gs.cache.Mu.Unlock()

	gs.cache.Chunks[key] = &types.GraphChunk{
		Kind:        kind,
		Body:        body,
		LastUpdated: gs.now(),
	}
}

// InvalidateByPattern removes entries matching pattern. "*" matches all and
// a trailing ":*" matches a key prefix.
func (gs *GraphStore) InvalidateByPattern(pattern string) int {
	gs.cache.Mu.Lock()
	defer gs.cache.Mu.Unlock()

	removed := 0
	for key := range gs.cache.Chunks {
		if matchesPattern(key, pattern) {
			delete(gs.cache.Chunks, key)
			removed++
		}
	}
	return removed
}

func matchesPattern(key, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasSuffix(prefix, ":") {
		return strings.HasPrefix(key, prefix)
	}
	return key == pattern
}

// PurgeExpired removes expired entries and returns how many were removed.
func (gs *GraphStore) PurgeExpired() int {
	gs.cache.Mu.Lock()
	defer gs.cache.Mu.Unlock()

	now := gs.now()
	removed := 0
	for key, chunk := range gs.cache.Chunks {
		if now.Sub(chunk.LastUpdated) > gs.ttl {
			delete(gs.cache.Chunks, key)
			removed++
		}
	}
	return removed
}

// Summary returns cache status for the status endpoint.
func (gs *GraphStore) Summary() map[string]any {
	gs.cache.Mu.RLock()
	defer gs.cache.Mu.RUnlock()

	now := gs.now()
	active, expired := 0, 0
	for _, chunk := range gs.cache.Chunks {
		if now.Sub(chunk.LastUpdated) <= gs.ttl {
			active++
		} else {
			expired++
		}
	}

	return map[string]any{
		"totalChunks":   len(gs.cache.Chunks),
		"activeChunks":  active,
		"expiredChunks": expired,
		"hits":          gs.cache.Hits,
		"misses":        gs.cache.Misses,
		"ttl":           gs.ttl.String(),
	}
}
