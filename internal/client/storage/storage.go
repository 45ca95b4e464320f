/*
Package storage persists the client session in a local SQLite file.

The session lives in a key/value "metadata" table under the keys "token" and
"user". Both keys are always written and removed together.
*/
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"duvidha/internal/client/storage/migrations"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Session is the persisted pair. User is the JSON-encoded decoded token
// payload. Missing keys load as empty strings.
type Session struct {
	Token string
	User  string
}

// Empty reports whether nothing was persisted.
func (s Session) Empty() bool {
	return s.Token == "" && s.User == ""
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate session db: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or "" when absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata[%s]: %w", key, err)
	}
	return value, nil
}

// LoadSession reads the token and user keys.
func (s *Store) LoadSession(ctx context.Context) (Session, error) {
	token, err := s.Get(ctx, KeyToken)
	if err != nil {
		return Session{}, err
	}
	u, err := s.Get(ctx, KeyUser)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: u}, nil
}

// SaveSession writes both keys in one transaction.
func (s *Store) SaveSession(ctx context.Context, sess Session) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for key, value := range map[string]string{KeyToken: sess.Token, KeyUser: sess.User} {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO metadata (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, key, value)
			if err != nil {
				return fmt.Errorf("set metadata[%s]: %w", key, err)
			}
		}
		return nil
	})
}

// ClearSession deletes both keys in one transaction. Clearing an empty store is a no-op.
func (s *Store) ClearSession(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?)`, KeyToken, KeyUser); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
