package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/authkit/auth-api/internal/core/domain"
	"github.com/authkit/auth-api/internal/core/ports"
)

// uniqueViolation is the SQLSTATE raised by the users.email constraint.
const uniqueViolation = "23505"

// DBTX is the subset of *pgxpool.Pool (and pgx.Tx) the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	first_name    VARCHAR(100) NOT NULL,
	last_name     VARCHAR(100) NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type UserRepository struct {
	db     DBTX
	hasher ports.PasswordHasher
}

func NewUserRepository(db DBTX, hasher ports.PasswordHasher) *UserRepository {
	return &UserRepository{db: db, hasher: hasher}
}

// CreateTable ensures the users table exists. Safe to call on every start.
func (r *UserRepository) CreateTable(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createUsersTable); err != nil {
		return &domain.StorageError{Op: "create table", Err: err}
	}
	return nil
}

// Create hashes the password and inserts the user. Uniqueness is left to the
// database constraint so concurrent registrations cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, u domain.NewUser) (int64, error) {
	hash, err := r.hasher.Hash(u.Password)
	if err != nil {
		return 0, &domain.StorageError{Op: "hash password", Err: err}
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Email, hash, u.FirstName, u.LastName).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, &domain.StorageError{Op: "insert user", Err: err}
	}
	return id, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	var createdAt, updatedAt time.Time
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.StorageError{Op: "find user by email", Err: err}
	}
	u.CreatedAt, u.UpdatedAt = createdAt.UTC(), updatedAt.UTC()
	return &u, nil
}

// FindByID never selects the password hash.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	var createdAt, updatedAt time.Time
	err := r.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, &domain.StorageError{Op: "find user by id", Err: err}
	}
	u.CreatedAt, u.UpdatedAt = createdAt.UTC(), updatedAt.UTC()
	return &u, nil
}

// Ping backs the readiness probe.
func (r *UserRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
