// Package store provides storage backends for aiwo.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/mattn/go-sqlite3"

	"github.com/remote-first-institute/aiwo/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists records in an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite database", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		db.Close()
		slog.Error("Failed to apply SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	slog.Info("SQLite store initialized", "path", dsn)
	return &SQLiteStore{db: db}, nil
}

// AddUser inserts a user and returns its id.
func (s *SQLiteStore) AddUser(u models.User) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO users (email, country, industry, profession) VALUES (?, ?, ?, ?)`,
		u.Email, u.Country, u.Industry, u.Profession,
	)
	if err != nil {
		if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return res.LastInsertId()
}

// GetUser returns the user with the given email, or nil if absent.
func (s *SQLiteStore) GetUser(email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(
		`SELECT id, email, country, industry, profession, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Country, &u.Industry, &u.Profession, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// DeleteUser removes the user with the given email, if present.
func (s *SQLiteStore) DeleteUser(email string) error {
	if _, err := s.db.Exec(`DELETE FROM users WHERE email = ?`, email); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// AddAnswer records an interview answer.
func (s *SQLiteStore) AddAnswer(a models.Answer) error {
	_, err := s.db.Exec(
		`INSERT INTO answers (user_id, question, response, topic, score, magnitude) VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Question, a.Response, a.Topic, a.Score, a.Magnitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// AddScore records a computed score.
func (s *SQLiteStore) AddScore(sc models.ScoreRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO scores (user_id, score, role) VALUES (?, ?, ?)`,
		sc.UserID, sc.Score, string(sc.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// LatestScore returns the most recent score for a user, or nil if none.
func (s *SQLiteStore) LatestScore(userID int64) (*models.ScoreRecord, error) {
	var sc models.ScoreRecord
	var role string
	err := s.db.QueryRow(
		`SELECT id, user_id, score, role, created_at FROM scores WHERE user_id = ? ORDER BY id DESC LIMIT 1`,
		userID,
	).Scan(&sc.ID, &sc.UserID, &sc.Score, &role, &sc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query score: %w", err)
	}
	sc.Role = models.Role(role)
	return &sc, nil
}

// AddPurchase records a purchase for a user.
func (s *SQLiteStore) AddPurchase(userID int64) error {
	if _, err := s.db.Exec(`INSERT INTO purchases (user_id) VALUES (?)`, userID); err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// GetPurchases lists a user's purchases.
func (s *SQLiteStore) GetPurchases(userID int64) ([]models.Purchase, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, created_at FROM purchases WHERE user_id = ? ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer rows.Close()

	var purchases []models.Purchase
	for rows.Next() {
		var p models.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
