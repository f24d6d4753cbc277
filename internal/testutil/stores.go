// Package testutil provides in-memory stores and fixtures for tests.  The
// stores report misses with the repository sentinel errors so services
// behave exactly as they do against MySQL.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/model"
	"github.com/iliyamo/insurance-catalog/internal/repository"
)

type Users struct {
	mu   sync.Mutex
	rows []model.User
	Err  error // returned by every call when set
}

// Add stores a user with a MinCost bcrypt hash of password and returns it.
func (s *Users) Add(t testing.TB, name, email, password string) model.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uint64(len(s.rows) + 1), Name: name, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	s.rows = append(s.rows, u)
	return u
}

func (s *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	for _, u := range s.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	for _, u := range s.rows {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

type Tokens struct {
	mu   sync.Mutex
	rows map[string]model.AccessToken
	Err  error
}

func (s *Tokens) Create(_ context.Context, t model.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.rows == nil {
		s.rows = map[string]model.AccessToken{}
	}
	s.rows[t.ID] = t
	return nil
}

func (s *Tokens) GetByID(_ context.Context, id string) (model.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.AccessToken{}, s.Err
	}
	t, ok := s.rows[id]
	if !ok {
		return model.AccessToken{}, repository.ErrTokenNotFound
	}
	return t, nil
}

func (s *Tokens) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if t, ok := s.rows[id]; ok {
		t.Revoked = true
		s.rows[id] = t
	}
	return nil
}

// Expire moves a stored token's expiry into the past.
func (s *Tokens) Expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.rows[id]; ok {
		t.ExpiresAt = time.Now().Add(-time.Minute)
		s.rows[id] = t
	}
}

// Len returns the number of stored tokens.
func (s *Tokens) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type Products struct {
	mu    sync.Mutex
	rows  []model.Product
	Err   error
	Calls int
}

func (s *Products) Add(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uint64(len(s.rows) + 1)
	s.rows = append(s.rows, p)
}

func (s *Products) ListAll(context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Product{}, s.rows...), nil
}

func (s *Products) GetByProductID(_ context.Context, productID string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	if s.Err != nil {
		return model.Product{}, s.Err
	}
	for _, p := range s.rows {
		if p.ProductID == productID {
			return p, nil
		}
	}
	return model.Product{}, repository.ErrProductNotFound
}

// Product builds a catalog entry.
func Product(id, name, typ string, price float64) model.Product {
	return model.Product{ProductID: id, Name: name, Type: typ, Coverage: name + " coverage", Price: price, IsActive: true}
}
