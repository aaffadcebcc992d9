package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

const (
	insertUserQuery = `
INSERT INTO users (username, email, password_hash, role, created_at, is_active)
VALUES (?, ?, ?, ?, ?, ?);
`
	selectUserByUsernameQuery = `
SELECT id, username, email, password_hash, role, created_at, is_active
FROM users
WHERE username = ?;
`
	selectUserByIDQuery = `
SELECT id, username, email, password_hash, role, created_at, is_active
FROM users
WHERE id = ?;
`
)

type UserRepository struct {
	db *sqlx.DB
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	IsActive     bool      `db:"is_active"`
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, insertUserQuery,
		user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt.UTC(), user.IsActive)
	if err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrUserExists
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, selectUserByUsernameQuery, username)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, selectUserByIDQuery, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return &domain.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		CreatedAt:    row.CreatedAt,
		IsActive:     row.IsActive,
	}, nil
}
