// Package block provides the concrete SQL-based implementation of the block instance repository.
package block

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/domain/block"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
)

// SQLInstanceRepository is the SQL-based implementation of the InstanceRepository.
type SQLInstanceRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLInstanceRepository creates a new instance of the repository.
func NewSQLInstanceRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLInstanceRepository {
	return &SQLInstanceRepository{
		db:     db,
		logger: logger,
	}
}

const instanceColumns = `id, parent_context_id, graphtype, created, changed`

// FindByID retrieves an instance, returning (nil, nil) when it is missing.
func (r *SQLInstanceRepository) FindByID(ctx context.Context, id string) (*block.Instance, error) {
	const query = `SELECT ` + instanceColumns + ` FROM block_instances WHERE id = ?`

	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	instance, err := scanInstance(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Database().Debug("Block instance not found", "id", id)
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load block instance", "error", err.Error(), "id", id)
		return nil, err
	}
	return instance, nil
}

// FindByParentContext lists the instances placed in a context, oldest first.
func (r *SQLInstanceRepository) FindByParentContext(ctx context.Context, contextID int64) ([]*block.Instance, error) {
	const query = `SELECT ` + instanceColumns + ` FROM block_instances WHERE parent_context_id = ? ORDER BY created, id`

	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	rows, err := r.db.QueryContext(ctx, query, contextID)
	if err != nil {
		r.logger.Database().Error("Failed to list block instances", "error", err.Error(), "contextId", contextID)
		return nil, err
	}
	defer rows.Close()

	var instances []*block.Instance
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, rows.Err()
}

// Store inserts a new instance.
func (r *SQLInstanceRepository) Store(ctx context.Context, instance *block.Instance) error {
	const query = `INSERT INTO block_instances (id, parent_context_id, graphtype, created, changed) VALUES (?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	if instance.Created.IsZero() {
		instance.Created = now
	}
	if instance.Changed.IsZero() {
		instance.Changed = instance.Created
	}

	_, err := r.db.ExecContext(ctx, query, instance.ID, instance.ParentContextID, instance.Config.GraphType, instance.Created, instance.Changed)
	if err != nil {
		r.logger.Database().Error("Failed to store block instance", "error", err.Error(), "id", instance.ID)
		return err
	}
	r.logger.Database().Info("Block instance stored", "id", instance.ID, "parentContextId", instance.ParentContextID)
	return nil
}

// UpdateConfig replaces the configuration of an existing instance.
func (r *SQLInstanceRepository) UpdateConfig(ctx context.Context, id string, config block.WidgetConfig) error {
	const query = `UPDATE block_instances SET graphtype = ?, changed = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, config.GraphType, time.Now().UTC(), id)
	if err != nil {
		r.logger.Database().Error("Failed to update block instance config", "error", err.Error(), "id", id)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return block.ErrInstanceNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstance(row rowScanner) (*block.Instance, error) {
	var instance block.Instance
	if err := row.Scan(&instance.ID, &instance.ParentContextID, &instance.Config.GraphType, &instance.Created, &instance.Changed); err != nil {
		return nil, err
	}
	return &instance, nil
}
