// Package types defines the cache entry structures shared by stores and workers.
package types

import (
	"sync"
	"time"
)

// GraphChunk is one cached analytics service response. An empty Body is a
// valid cached value meaning the service had no data.
type GraphChunk struct {
	Kind        string    `json:"kind"`
	Body        string    `json:"body"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// GraphCache holds graph chunks keyed by request.
type GraphCache struct {
	Chunks map[string]*GraphChunk
	Hits   int64
	Misses int64
	Mu     sync.RWMutex
}
