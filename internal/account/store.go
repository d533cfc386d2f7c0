// Package account stores registered users in a bbolt database.
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserExists is returned when an email is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var usersBucket = []byte("users")

// User is a registered account.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists users keyed by normalized email.
type Store struct {
	db   *bbolt.DB
	cost int
}

// Option configures a Store.
type Option func(*Store)

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Store) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// Open opens (creating if needed) the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open account database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create users bucket: %w", err)
	}

	s := &Store{db: db, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register creates a user. The password is stored as a bcrypt hash.
func (s *Store) Register(email, password string) (User, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var user User
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(usersBucket)
		if b.Get([]byte(email)) != nil {
			return ErrUserExists
		}
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		user = User{ID: id, Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return b.Put([]byte(email), raw)
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Authenticate returns the user when email and password match.
func (s *Store) Authenticate(email, password string) (User, error) {
	user, err := s.Lookup(email)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Lookup returns the user registered under email.
func (s *Store) Lookup(email string) (User, error) {
	var user User
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(usersBucket).Get([]byte(normalizeEmail(email)))
		if raw == nil {
			return ErrInvalidCredentials
		}
		// raw is only valid inside the transaction; Unmarshal copies it.
		return json.Unmarshal(raw, &user)
	})
	return user, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
