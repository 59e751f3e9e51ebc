// Package session persists role identities between runs. It stands in for
// the browser local storage the backend contract assumes: one identifier per
// role, attached manually to requests, cleared on logout.
package session

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Role names match the identifier keys the backend expects.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleUser     Role = "user"
)

// Store wraps the local sqlite database.
type Store struct {
	*sql.DB
}

// Open creates the data directory if needed and initializes the schema.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "session.db")+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db}, nil
}

// Identity returns the stored identifier for a role, empty when logged out.
func (s *Store) Identity(role Role) (string, error) {
	var identity string
	err := s.QueryRow("SELECT identity FROM session WHERE role = ?", string(role)).Scan(&identity)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return identity, err
}

// SetIdentity stores (or replaces) the identifier for a role.
func (s *Store) SetIdentity(role Role, identity string) error {
	_, err := s.Exec(`
		INSERT INTO session (role, identity, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(role) DO UPDATE SET identity = excluded.identity, updated_at = CURRENT_TIMESTAMP
	`, string(role), identity)
	return err
}

// ClearIdentity logs a role out.
func (s *Store) ClearIdentity(role Role) error {
	_, err := s.Exec("DELETE FROM session WHERE role = ?", string(role))
	return err
}

// GetSetting retrieves a setting value by key.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
