package performance

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
)

// Tracker keeps recently completed markers and raises alerts for slow ones
type Tracker struct {
	completed  []*Marker
	alerts     []*PerformanceAlert
	thresholds *AlertThresholds
	config     *TrackerConfig
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int  `json:"maxMarkers"`   // Maximum number of completed markers to retain
	MaxAlerts    int  `json:"maxAlerts"`    // Maximum number of alerts to retain
	EnableAlerts bool `json:"enableAlerts"` // Whether to generate performance alerts
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   2000,
		MaxAlerts:    200,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`
	RenderThreshold           time.Duration `json:"renderThreshold"`
	GraphRequestThreshold     time.Duration `json:"graphRequestThreshold"`
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		CriticalResponseThreshold: 5 * time.Second,
		RenderThreshold:           750 * time.Millisecond,
		GraphRequestThreshold:     500 * time.Millisecond,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig, logger *logging.ChanneledLogger) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		thresholds: DefaultAlertThresholds(),
		config:     config,
		logger:     logger,
	}
}

// StartOperation creates a new performance marker for an operation
func (t *Tracker) StartOperation(operation, subject string) *Marker {
	return &Marker{
		Operation: operation,
		Subject:   subject,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}
}

// CompleteOperation completes a marker, retains it and checks for alerts
func (t *Tracker) CompleteOperation(marker *Marker) {
	if t == nil || marker == nil || marker.Completed {
		return
	}

	marker.Complete()

	t.mu.Lock()
	t.completed = append(t.completed, marker)
	if len(t.completed) > t.config.MaxMarkers {
		t.completed = t.completed[len(t.completed)-t.config.MaxMarkers:]
	}
	t.mu.Unlock()

	if t.config.EnableAlerts {
		t.checkForAlerts(marker)
	}

	if t.logger != nil {
		t.logger.Perf().Debug("Operation completed",
			"operation", marker.Operation,
			"subject", marker.Subject,
			"duration", marker.Duration,
			"success", marker.Success,
		)
	}
}

// checkForAlerts evaluates a completed marker against alert thresholds
func (t *Tracker) checkForAlerts(marker *Marker) {
	var alert *PerformanceAlert

	switch {
	case marker.Duration > t.thresholds.CriticalResponseThreshold:
		alert = t.createAlert(marker, AlertCritical, "Operation exceeded critical response time threshold")
	case strings.HasPrefix(marker.Operation, "block:") && marker.Duration > t.thresholds.RenderThreshold:
		alert = t.createAlert(marker, AlertWarning, "Block render exceeded threshold")
	case strings.HasPrefix(marker.Operation, "graph:") && marker.Duration > t.thresholds.GraphRequestThreshold:
		alert = t.createAlert(marker, AlertWarning, "Graph request exceeded threshold")
	}
	if alert == nil {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alert)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Alert().Warn(alert.Message,
			"operation", alert.Operation,
			"subject", alert.Subject,
			"severity", alert.Severity,
			"duration", alert.Duration,
		)
	}
}

func (t *Tracker) createAlert(marker *Marker, severity AlertSeverity, message string) *PerformanceAlert {
	return &PerformanceAlert{
		Operation: marker.Operation,
		Subject:   marker.Subject,
		Severity:  severity,
		Message:   message,
		Duration:  marker.Duration,
		Timestamp: time.Now(),
	}
}

// GetAlerts returns a copy of the retained alerts
func (t *Tracker) GetAlerts() []PerformanceAlert {
	t.mu.RLock()
	defer t.mu.RUnlock()

	alerts := make([]PerformanceAlert, 0, len(t.alerts))
	for _, alert := range t.alerts {
		alerts = append(alerts, *alert)
	}
	return alerts
}

// GetStats aggregates retained markers per operation, sorted by operation name
func (t *Tracker) GetStats() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	byOperation := make(map[string]*OperationStats)
	totals := make(map[string]time.Duration)
	for _, marker := range t.completed {
		stats, ok := byOperation[marker.Operation]
		if !ok {
			stats = &OperationStats{Operation: marker.Operation}
			byOperation[marker.Operation] = stats
		}
		stats.Count++
		if !marker.Success {
			stats.Failures++
		}
		if marker.Duration > stats.Max {
			stats.Max = marker.Duration
		}
		totals[marker.Operation] += marker.Duration
	}

	result := make([]OperationStats, 0, len(byOperation))
	for operation, stats := range byOperation {
		stats.Average = totals[operation] / time.Duration(stats.Count)
		result = append(result, *stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Operation < result[j].Operation })
	return result
}
