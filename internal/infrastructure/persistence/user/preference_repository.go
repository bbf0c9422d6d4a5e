// Package user provides the concrete SQL-based implementation of the preference repository.
package user

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/domain/user"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
)

// SQLPreferenceRepository is the SQL-based implementation of the PreferenceRepository.
type SQLPreferenceRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLPreferenceRepository creates a new instance of the repository.
func NewSQLPreferenceRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLPreferenceRepository {
	return &SQLPreferenceRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a preference, returning (nil, nil) when it was never set.
func (r *SQLPreferenceRepository) Get(ctx context.Context, userID int64, name string) (*user.Preference, error) {
	const query = `SELECT user_id, name, value FROM user_preferences WHERE user_id = ? AND name = ?`

	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	var p user.Preference
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&p.UserID, &p.Name, &p.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load preference", "error", err.Error(), "userId", userID, "name", name)
		return nil, err
	}
	return &p, nil
}

// GetBool reads a preference as a boolean. Missing or unparseable values
// yield defaultValue.
func (r *SQLPreferenceRepository) GetBool(ctx context.Context, userID int64, name string, defaultValue bool) (bool, error) {
	p, err := r.Get(ctx, userID, name)
	if err != nil {
		return defaultValue, err
	}
	if p == nil {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(p.Value)
	if err != nil {
		r.logger.Database().Warn("Stored preference is not a boolean", "userId", userID, "name", name, "value", p.Value)
		return defaultValue, nil
	}
	return value, nil
}

// Set upserts a preference value.
func (r *SQLPreferenceRepository) Set(ctx context.Context, userID int64, name, value string) error {
	const query = `
		INSERT INTO user_preferences (user_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET value = excluded.value`

	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	if _, err := r.db.ExecContext(ctx, query, userID, name, value); err != nil {
		r.logger.Database().Error("Failed to store preference", "error", err.Error(), "userId", userID, "name", name)
		return err
	}
	r.logger.Database().Debug("Preference stored", "userId", userID, "name", name)
	return nil
}
