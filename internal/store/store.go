// Package store provides storage backends for aiwo.
//
// It includes an in-memory store for tests, an SQLite store for single-node
// deployments, and a PostgreSQL store. All three implement the Store
// interface; the backend is selected from options at startup.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/remote-first-institute/aiwo/internal/models"
)

// Store defines the persistence operations the core depends on.
type Store interface {
	// AddUser inserts a user and returns its id. Duplicate emails fail.
	AddUser(u models.User) (int64, error)
	// GetUser returns the user with the given email, or nil if absent.
	GetUser(email string) (*models.User, error)
	// DeleteUser removes the user with the given email, if present.
	DeleteUser(email string) error

	// AddAnswer records an interview answer with its sentiment analysis.
	AddAnswer(a models.Answer) error
	// AddScore records a computed remote work score.
	AddScore(s models.ScoreRecord) error
	// LatestScore returns the most recent score for a user, or nil if none.
	LatestScore(userID int64) (*models.ScoreRecord, error)

	// AddPurchase records a completed purchase for a user.
	AddPurchase(userID int64) error
	// GetPurchases lists a user's purchases.
	GetPurchases(userID int64) ([]models.Purchase, error)

	// Close releases the underlying resources.
	Close() error
}

// Opts holds configuration for persistent stores.
type Opts struct {
	// DSN is the database connection string: a file path for SQLite or a
	// postgres:// URL for PostgreSQL.
	DSN string
	// Driver forces a backend ("sqlite3" or "postgres"); inferred from the
	// DSN when empty.
	Driver string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithDriver forces the database driver.
func WithDriver(driver string) Option {
	return func(o *Opts) { o.Driver = driver }
}

// NewStore selects and constructs a store from the given options. A postgres
// DSN (or explicit driver) yields a PostgresStore; any other DSN yields an
// SQLiteStore; no DSN yields an in-memory store.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.Driver == "postgres" || strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://"):
		return NewPostgresStore(opts...)
	case cfg.DSN != "":
		return NewSQLiteStore(opts...)
	default:
		return NewInMemoryStore(), nil
	}
}

// InMemoryStore keeps all records in process memory. It is safe for
// concurrent use and intended for tests and local development.
type InMemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	users     map[string]models.User
	answers   []models.Answer
	scores    []models.ScoreRecord
	purchases []models.Purchase
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1, users: make(map[string]models.User)}
}

func (s *InMemoryStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// AddUser inserts a user and returns its id.
func (s *InMemoryStore) AddUser(u models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.Email]; exists {
		return 0, ErrDuplicateUser
	}
	u.ID = s.id()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.Email] = u
	return u.ID, nil
}

// GetUser returns the user with the given email, or nil if absent.
func (s *InMemoryStore) GetUser(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// DeleteUser removes the user with the given email, if present.
func (s *InMemoryStore) DeleteUser(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, email)
	return nil
}

// AddAnswer records an interview answer.
func (s *InMemoryStore) AddAnswer(a models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.answers = append(s.answers, a)
	return nil
}

// Answers returns all recorded answers (test helper).
func (s *InMemoryStore) Answers() []models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Answer, len(s.answers))
	copy(out, s.answers)
	return out
}

// AddScore records a computed score.
func (s *InMemoryStore) AddScore(sc models.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = s.id()
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}
	s.scores = append(s.scores, sc)
	return nil
}

// LatestScore returns the most recent score for a user, or nil if none.
func (s *InMemoryStore) LatestScore(userID int64) (*models.ScoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matching := make([]models.ScoreRecord, 0, len(s.scores))
	for _, sc := range s.scores {
		if sc.UserID == userID {
			matching = append(matching, sc)
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID > matching[j].ID })
	return &matching[0], nil
}

// AddPurchase records a purchase for a user.
func (s *InMemoryStore) AddPurchase(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, models.Purchase{ID: s.id(), UserID: userID, CreatedAt: time.Now()})
	return nil
}

// GetPurchases lists a user's purchases.
func (s *InMemoryStore) GetPurchases(userID int64) ([]models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Purchase
	for _, p := range s.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
