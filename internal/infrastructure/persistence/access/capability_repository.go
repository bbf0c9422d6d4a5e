package access

import (
	"context"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
)

// SQLCapabilityRepository evaluates capability grants along the context tree.
type SQLCapabilityRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLCapabilityRepository creates a new instance of the repository.
func NewSQLCapabilityRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLCapabilityRepository {
	return &SQLCapabilityRepository{
		db:     db,
		logger: logger,
	}
}

// HasCapability walks from contextID to the root. A prohibit anywhere on the
// path denies; otherwise the grant nearest to contextID decides. No grant
// at all denies.
func (r *SQLCapabilityRepository) HasCapability(ctx context.Context, userID int64, capability string, contextID int64) (bool, error) {
	const query = `
		WITH RECURSIVE chain(id, parent_id, depth) AS (
			SELECT id, parent_id, 0 FROM contexts WHERE id = ?
			UNION ALL
			SELECT c.id, c.parent_id, chain.depth + 1
			FROM contexts c JOIN chain ON c.id = chain.parent_id
		)
		SELECT g.permission FROM chain
		JOIN capability_grants g ON g.context_id = chain.id
		WHERE g.user_id = ? AND g.capability = ?
		ORDER BY chain.depth`

	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	rows, err := r.db.QueryContext(ctx, query, contextID, userID, capability)
	if err != nil {
		r.logger.Database().Error("Failed to evaluate capability", "error", err.Error(), "capability", capability)
		return false, err
	}
	defer rows.Close()

	decided := false
	allowed := false
	for rows.Next() {
		var permission int
		if err := rows.Scan(&permission); err != nil {
			return false, err
		}
		if permission <= access.PermissionProhibit {
			return false, nil
		}
		if !decided && permission != 0 {
			decided = true
			allowed = permission > 0
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return allowed, nil
}

// Grant sets the permission of a capability for a user in a context.
func (r *SQLCapabilityRepository) Grant(ctx context.Context, userID int64, capability string, contextID int64, permission int) error {
	const query = `
		INSERT INTO capability_grants (context_id, user_id, capability, permission) VALUES (?, ?, ?, ?)
		ON CONFLICT(context_id, user_id, capability) DO UPDATE SET permission = excluded.permission`

	if _, err := r.db.ExecContext(ctx, query, contextID, userID, capability, permission); err != nil {
		r.logger.Database().Error("Failed to store capability grant", "error", err.Error(), "capability", capability)
		return err
	}
	r.logger.Database().Debug("Capability grant stored", "userId", userID, "capability", capability, "contextId", contextID, "permission", permission)
	return nil
}
