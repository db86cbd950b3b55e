package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/employee-tracker/internal/platform/db"
	"github.com/noah-isme/employee-tracker/internal/shared"
)

const emailConstraint = "users_email_key"

// Repository provides PostgreSQL backed persistence for users.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// Create inserts a user. A clash on the email constraint yields shared.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING `+userColumns,
		name, email, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err, emailConstraint) {
			return nil, shared.ErrDuplicate
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return user, nil
}

// FindByEmail fetches a user by exact email match.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return user, nil
}

// FindByID fetches a user by identifier.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: find by id: %w", err)
	}
	return user, nil
}

// EmailExists reports whether an account already uses email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("users: email exists: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
