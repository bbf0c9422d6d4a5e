package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
)

type countingPurger struct {
	calls   atomic.Int32
	removed int
}

func (p *countingPurger) PurgeExpired() int {
	p.calls.Add(1)
	return p.removed
}

func TestWorker_RunOnce(t *testing.T) {
	a := &countingPurger{removed: 2}
	b := &countingPurger{removed: 3}
	w := NewWorker(map[string]Purger{"a": a, "b": b}, &Config{CleanupInterval: time.Minute}, logging.NewDiscardLogger())

	assert.Equal(t, 5, w.RunOnce())
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestWorker_StartStopsWithContext(t *testing.T) {
	p := &countingPurger{}
	w := NewWorker(map[string]Purger{"graphs": p}, &Config{CleanupInterval: 5 * time.Millisecond}, logging.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
