// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/johsire/dev-connector/core/domain"
	"github.com/johsire/dev-connector/core/port/out"
)

// UserAdapter implements out.UserRepository over the identity
// component's PostgreSQL users table. This service only reads the
// display projection; user rows are written by the auth service.
type UserAdapter struct {
	db *sqlx.DB
}

// NewUserAdapter creates a new UserAdapter.
func NewUserAdapter(db *sqlx.DB) *UserAdapter {
	return &UserAdapter{db: db}
}

type userRow struct {
	ID        uuid.UUID      `db:"id"`
	Email     string         `db:"email"`
	Name      sql.NullString `db:"name"`
	AvatarURL sql.NullString `db:"avatar_url"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *userRow) toEntity() *domain.User {
	user := &domain.User{
		ID:        r.ID,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Name.Valid {
		user.Name = &r.Name.String
	}
	if r.AvatarURL.Valid {
		user.AvatarURL = &r.AvatarURL.String
	}
	return user
}

// GetByID retrieves a user by ID. Returns nil when the row is missing.
func (a *UserAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var row userRow
	query := `SELECT id, email, name, avatar_url, created_at, updated_at FROM users WHERE id = $1`

	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return row.toEntity(), nil
}

// GetByIDs retrieves users by ID in one query. Missing ids are simply
// absent from the result map.
func (a *UserAdapter) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	users := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, email, name, avatar_url, created_at, updated_at FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}
	query = a.db.Rebind(query)

	var rows []userRow
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for i := range rows {
		users[rows[i].ID] = rows[i].toEntity()
	}
	return users, nil
}

var _ out.UserRepository = (*UserAdapter)(nil)
