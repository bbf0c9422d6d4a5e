package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/AtRiskMedia/ace-block/internal/domain/user"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/metrics"
)

// Preference write statuses recorded in metrics.
const (
	PreferenceWriteSuccess  = "success"
	PreferenceWriteRejected = "rejected"
	PreferenceWriteError    = "error"
)

// PreferenceService guards client-initiated preference writes. Only names
// registered with AllowAjaxUpdate may be written, and values are normalised
// to the registered kind before they are stored.
type PreferenceService struct {
	repo    user.PreferenceRepository
	logger  *logging.ChanneledLogger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	registry map[string]user.PreferenceKind
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(repo user.PreferenceRepository, logger *logging.ChanneledLogger, m *metrics.Metrics) *PreferenceService {
	return &PreferenceService{
		repo:     repo,
		logger:   logger,
		metrics:  m,
		registry: make(map[string]user.PreferenceKind),
	}
}

// AllowAjaxUpdate registers name as writable from the client.
func (s *PreferenceService) AllowAjaxUpdate(name string, kind user.PreferenceKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[name] = kind
}

// AllowedKind returns the registered kind for name.
func (s *PreferenceService) AllowedKind(name string) (user.PreferenceKind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kind, ok := s.registry[name]
	return kind, ok
}

// Update writes a client-supplied value. Repeated writes overwrite; the
// last one wins.
func (s *PreferenceService) Update(ctx context.Context, userID int64, name, value string) error {
	kind, ok := s.AllowedKind(name)
	if !ok {
		s.metrics.ObservePreferenceWrite(name, PreferenceWriteRejected)
		s.logger.Auth().Warn("Rejected preference write", "userId", userID, "name", name)
		return fmt.Errorf("%s: %w", name, user.ErrNotAjaxUpdatable)
	}

	normalized, err := normalizePreference(kind, value)
	if err != nil {
		s.metrics.ObservePreferenceWrite(name, PreferenceWriteRejected)
		return fmt.Errorf("%s=%q: %w", name, value, err)
	}

	if err := s.repo.Set(ctx, userID, name, normalized); err != nil {
		s.metrics.ObservePreferenceWrite(name, PreferenceWriteError)
		return fmt.Errorf("failed to store preference %s: %w", name, err)
	}

	s.metrics.ObservePreferenceWrite(name, PreferenceWriteSuccess)
	s.logger.Content().Debug("Preference updated", "userId", userID, "name", name, "value", normalized)
	return nil
}

// Get returns a stored preference value, or "" when unset.
func (s *PreferenceService) Get(ctx context.Context, userID int64, name string) (string, error) {
	p, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return "", fmt.Errorf("failed to load preference %s: %w", name, err)
	}
	if p == nil {
		return "", nil
	}
	return p.Value, nil
}

func normalizePreference(kind user.PreferenceKind, value string) (string, error) {
	switch kind {
	case user.PreferenceBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", user.ErrInvalidPreferenceValue
		}
		if b {
			return "1", nil
		}
		return "0", nil
	case user.PreferenceInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return "", user.ErrInvalidPreferenceValue
		}
		return strconv.FormatInt(n, 10), nil
	default:
		return value, nil
	}
}
