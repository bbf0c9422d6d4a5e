// Package cleanup provides background worker
package cleanup

import (
	"context"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/pkg/config"
)

// Purger is a cache that can drop its expired entries.
type Purger interface {
	PurgeExpired() int
}

// Config holds cleanup worker configuration.
type Config struct {
	CleanupInterval time.Duration
}

// NewConfig reads the interval from the central config package.
func NewConfig() *Config {
	return &Config{CleanupInterval: config.CleanupInterval}
}

// Worker handles background cache cleanup operations
type Worker struct {
	caches map[string]Purger
	config *Config
	logger *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker over the named caches.
func NewWorker(caches map[string]Purger, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		caches: caches,
		config: config,
		logger: logger,
	}
}

// Start runs cleanup on every tick until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	if w.config.CleanupInterval <= 0 {
		w.logger.Cache().Warn("Cache cleanup worker disabled", "interval", w.config.CleanupInterval)
		return
	}

	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started", "interval", w.config.CleanupInterval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce purges every cache and returns the number of entries removed.
func (w *Worker) RunOnce() int {
	start := time.Now()
	total := 0
	for name, cache := range w.caches {
		cleaned := cache.PurgeExpired()
		if cleaned > 0 {
			w.logger.Cache().Debug("Purged expired entries", "cache", name, "count", cleaned)
		}
		total += cleaned
	}

	if total > 0 {
		w.logger.Cache().Info("Cache cleanup finished", "cleaned", total, "duration", time.Since(start))
	}
	return total
}
