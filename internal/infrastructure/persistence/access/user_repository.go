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

// SQLUserRepository is the SQL-based implementation of the UserRepository.
type SQLUserRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLUserRepository creates a new instance of the repository.
func NewSQLUserRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLUserRepository {
	return &SQLUserRepository{
		db:     db,
		logger: logger,
	}
}

// FindByID retrieves a user by id, returning (nil, nil) when it is missing.
func (r *SQLUserRepository) FindByID(ctx context.Context, id int64) (*access.User, error) {
	const query = `SELECT id, username, firstname, lastname, deleted FROM users WHERE id = ?`

	start := time.Now()
	defer database.ObserveQuery(r.logger, query, start)

	var u access.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Database().Debug("User not found by ID", "id", id)
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load user by ID", "error", err.Error(), "id", id)
		return nil, err
	}
	return &u, nil
}

// Store saves a new user.
func (r *SQLUserRepository) Store(ctx context.Context, u *access.User) error {
	const query = `INSERT INTO users (id, username, firstname, lastname, deleted) VALUES (?, ?, ?, ?, ?)`

	var id any
	if u.ID != 0 {
		id = u.ID
	}
	res, err := r.db.ExecContext(ctx, query, id, u.Username, u.FirstName, u.LastName, u.Deleted)
	if err != nil {
		r.logger.Database().Error("Failed to store user", "error", err.Error(), "username", u.Username)
		return err
	}
	if u.ID == 0 {
		if u.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}
