// Package access provides the concrete SQL-based implementations of the
// context, user and capability repositories.
package access

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
)

// SQLContextRepository is the SQL-based implementation of the ContextRepository.
type SQLContextRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLContextRepository creates a new instance of the repository.
func NewSQLContextRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLContextRepository {
	return &SQLContextRepository{
		db:     db,
		logger: logger,
	}
}

const contextColumns = `id, contextlevel, instanceid, parent_id`

// FindByID retrieves a context by id, returning (nil, nil) when it is missing.
func (r *SQLContextRepository) FindByID(ctx context.Context, id int64) (*access.Context, error) {
	const query = `SELECT ` + contextColumns + ` FROM contexts WHERE id = ?`
	return r.findOne(ctx, query, id)
}

// SystemContext retrieves the root context.
func (r *SQLContextRepository) SystemContext(ctx context.Context) (*access.Context, error) {
	const query = `SELECT ` + contextColumns + ` FROM contexts WHERE contextlevel = ? ORDER BY id LIMIT 1`
	c, err := r.findOne(ctx, query, access.LevelSystem)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, access.ErrContextNotFound
	}
	return c, nil
}

// CourseContext retrieves the context of a course.
func (r *SQLContextRepository) CourseContext(ctx context.Context, courseID int64) (*access.Context, error) {
	const query = `SELECT ` + contextColumns + ` FROM contexts WHERE contextlevel = ? AND instanceid = ?`
	return r.findOne(ctx, query, access.LevelCourse, courseID)
}

// UserContext retrieves the personal context of a user.
func (r *SQLContextRepository) UserContext(ctx context.Context, userID int64) (*access.Context, error) {
	const query = `SELECT ` + contextColumns + ` FROM contexts WHERE contextlevel = ? AND instanceid = ?`
	return r.findOne(ctx, query, access.LevelUser, userID)
}

// CourseIDForContext walks up from contextID to the nearest course context
// and returns its course id, or siteCourseID when there is none.
func (r *SQLContextRepository) CourseIDForContext(ctx context.Context, contextID int64, siteCourseID int64) (int64, error) {
	const query = `
		WITH RECURSIVE chain(id, contextlevel, instanceid, parent_id, depth) AS (
			SELECT id, contextlevel, instanceid, parent_id, 0 FROM contexts WHERE id = ?
			UNION ALL
			SELECT c.id, c.contextlevel, c.instanceid, c.parent_id, chain.depth + 1
			FROM contexts c JOIN chain ON c.id = chain.parent_id
		)
		SELECT instanceid FROM chain WHERE contextlevel = ? ORDER BY depth LIMIT 1`

	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	var courseID int64
	err := r.db.QueryRowContext(ctx, query, contextID, access.LevelCourse).Scan(&courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return siteCourseID, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to resolve course for context", "error", err.Error(), "contextId", contextID)
		return 0, err
	}
	return courseID, nil
}

// Store saves a context; a zero id lets the database assign one.
func (r *SQLContextRepository) Store(ctx context.Context, c *access.Context) error {
	var id any
	if c.ID != 0 {
		id = c.ID
	}

	const query = `INSERT INTO contexts (id, contextlevel, instanceid, parent_id) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, id, c.Level, c.InstanceID, c.ParentID)
	if err != nil {
		r.logger.Database().Error("Failed to store context", "error", err.Error(), "level", c.Level.String(), "instanceId", c.InstanceID)
		return err
	}
	if c.ID == 0 {
		if c.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	r.logger.Database().Debug("Context stored", "id", c.ID, "level", c.Level.String())
	return nil
}

func (r *SQLContextRepository) findOne(ctx context.Context, query string, args ...any) (*access.Context, error) {
	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	var (
		c        access.Context
		parentID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Level, &c.InstanceID, &parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load context", "error", err.Error())
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.Int64
	}
	return &c, nil
}
