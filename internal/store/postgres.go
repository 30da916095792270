package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/lib/pq"

	"github.com/remote-first-institute/aiwo/internal/models"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists records in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL database", "error", err)
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		slog.Error("Failed to ping PostgreSQL database", "error", err)
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		db.Close()
		slog.Error("Failed to apply PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	slog.Info("PostgreSQL store initialized")
	return &PostgresStore{db: db}, nil
}

// AddUser inserts a user and returns its id.
func (s *PostgresStore) AddUser(u models.User) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO users (email, country, industry, profession) VALUES ($1, $2, $3, $4) RETURNING id`,
		u.Email, u.Country, u.Industry, u.Profession,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

// GetUser returns the user with the given email, or nil if absent.
func (s *PostgresStore) GetUser(email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(
		`SELECT id, email, country, industry, profession, created_at FROM users WHERE email = $1`,
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
func (s *PostgresStore) DeleteUser(email string) error {
	if _, err := s.db.Exec(`DELETE FROM users WHERE email = $1`, email); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// AddAnswer records an interview answer.
func (s *PostgresStore) AddAnswer(a models.Answer) error {
	_, err := s.db.Exec(
		`INSERT INTO answers (user_id, question, response, topic, score, magnitude) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.UserID, a.Question, a.Response, a.Topic, a.Score, a.Magnitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// AddScore records a computed score.
func (s *PostgresStore) AddScore(sc models.ScoreRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO scores (user_id, score, role) VALUES ($1, $2, $3)`,
		sc.UserID, sc.Score, string(sc.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// LatestScore returns the most recent score for a user, or nil if none.
func (s *PostgresStore) LatestScore(userID int64) (*models.ScoreRecord, error) {
	var sc models.ScoreRecord
	var role string
	err := s.db.QueryRow(
		`SELECT id, user_id, score, role, created_at FROM scores WHERE user_id = $1 ORDER BY id DESC LIMIT 1`,
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
func (s *PostgresStore) AddPurchase(userID int64) error {
	if _, err := s.db.Exec(`INSERT INTO purchases (user_id) VALUES ($1)`, userID); err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

// GetPurchases lists a user's purchases.
func (s *PostgresStore) GetPurchases(userID int64) ([]models.Purchase, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, created_at FROM purchases WHERE user_id = $1 ORDER BY id`,
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
