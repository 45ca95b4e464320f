package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"duvidha/internal/app/db"
)

// Repository is the credential store used by the auth handlers.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}

// PostgresRepository stores users in the "users" table.
// Email uniqueness is enforced by the users_email_key index.
type PostgresRepository struct {
	db db.DBTX
}

func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const createUserQuery = `
INSERT INTO users (id, username, email, password_hash, role, room_number)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

// Create inserts u, assigning an ID when it has none. A duplicate email
// yields ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}

	err := r.db.QueryRow(ctx, createUserQuery,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.RoomNumber,
	).Scan(&u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

const selectUserColumns = `SELECT id, username, email, password_hash, role, room_number, created_at FROM users`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, selectUserColumns+` WHERE lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return r.getOne(ctx, selectUserColumns+` WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	var (
		u         User
		role      string
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.RoomNumber,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("select user: %w", err)
	}

	u.Role = Role(role)
	u.CreatedAt = createdAt
	return u, nil
}
