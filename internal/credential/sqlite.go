package credential

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps credentials in a two-row key/value table, one row per
// storage key.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open -> %w", err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping -> %w", err)
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Exec -> %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context) (Holder, error) {
	var h Holder

	token, err := s.value(ctx, keyAccessToken)
	if err != nil {
		return Holder{}, err
	}
	h.AccessToken = token

	userJSON, err := s.value(ctx, keyUser)
	if err != nil {
		return Holder{}, err
	}
	if userJSON != "" {
		if err = json.Unmarshal([]byte(userJSON), &h.User); err != nil {
			return Holder{}, fmt.Errorf("json.Unmarshal -> %w", err)
		}
	}

	return h, nil
}

func (s *SQLiteStore) Set(ctx context.Context, h Holder) error {
	userJSON := ""
	if h.User != nil {
		data, err := json.Marshal(h.User)
		if err != nil {
			return fmt.Errorf("json.Marshal -> %w", err)
		}
		userJSON = string(data)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("s.db.BeginTx -> %w", err)
	}
	defer tx.Rollback()

	if err = putValue(ctx, tx, keyAccessToken, h.AccessToken); err != nil {
		return err
	}
	if err = putValue(ctx, tx, keyUser, userJSON); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) SetAccessToken(ctx context.Context, token string) error {
	return putValue(ctx, s.db, keyAccessToken, token)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("s.db.ExecContext -> %w", err)
	}
	return nil
}

func (s *SQLiteStore) value(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("s.db.QueryRowContext -> %w", err)
	}

	return v, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putValue(ctx context.Context, db execer, key, value string) error {
	if value == "" {
		if _, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, key); err != nil {
			return fmt.Errorf("db.ExecContext -> %w", err)
		}
		return nil
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO credentials (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("db.ExecContext -> %w", err)
	}

	return nil
}
