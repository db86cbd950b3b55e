package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/employee-tracker/internal/platform/db"
	"github.com/noah-isme/employee-tracker/internal/shared"
	"github.com/noah-isme/employee-tracker/internal/users"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindUserByEmail(ctx context.Context, email string) (*users.User, error)
	FindUserByID(ctx context.Context, id int64) (*users.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateToken(ctx context.Context, token Token) error
	FindToken(ctx context.Context, id string) (*Token, error)
	TouchToken(ctx context.Context, id string, at time.Time) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository is the subset available inside a registration transaction.
type TxRepository interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*users.User, error)
	CreateToken(ctx context.Context, token Token) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool  *pgxpool.Pool
	users *users.Repository
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, users: users.NewRepository(pool)}
}

// FindUserByEmail fetches a user by email.
func (r *PGRepository) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.users.FindByEmail(ctx, email)
}

// FindUserByID fetches a user by id.
func (r *PGRepository) FindUserByID(ctx context.Context, id int64) (*users.User, error) {
	return r.users.FindByID(ctx, id)
}

// EmailExists reports whether email is taken.
func (r *PGRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.users.EmailExists(ctx, email)
}

// CreateToken persists a token outside a transaction.
func (r *PGRepository) CreateToken(ctx context.Context, token Token) error {
	return insertToken(ctx, r.pool, token)
}

// FindToken loads a token by id.
func (r *PGRepository) FindToken(ctx context.Context, id string) (*Token, error) {
	var t Token
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, user_id, name, token_hash, created_at, last_used_at FROM auth_tokens WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.Name, &t.Hash, &t.CreatedAt, &t.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find token: %w", err)
	}
	return &t, nil
}

// TouchToken records the last time a token authenticated a request.
func (r *PGRepository) TouchToken(ctx context.Context, id string, at time.Time) error {
	if _, err := r.pool.Exec(ctx, `UPDATE auth_tokens SET last_used_at = $2 WHERE id = $1`, id, at.UTC()); err != nil {
		return fmt.Errorf("auth: touch token: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx, users: users.NewRepository(tx)})
	})
}

type pgTxRepository struct {
	tx    pgx.Tx
	users *users.Repository
}

func (r *pgTxRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (*users.User, error) {
	return r.users.Create(ctx, name, email, passwordHash)
}

func (r *pgTxRepository) CreateToken(ctx context.Context, token Token) error {
	return insertToken(ctx, r.tx, token)
}

func insertToken(ctx context.Context, conn db.DBTX, token Token) error {
	_, err := conn.Exec(ctx,
		`INSERT INTO auth_tokens (id, user_id, name, token_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.Name, token.Hash, token.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("auth: create token: %w", err)
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
