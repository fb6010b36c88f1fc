package store

import (
	"context"
	"sync"

	"github.com/danuartha/authgate/internal/auth/entity"
	"github.com/danuartha/authgate/internal/pkg/goerror"
)

// Memory is an in-process store used by tests. A single mutex serializes all
// record mutations, which satisfies the per-user serialization contract.
type Memory struct {
	mu        sync.Mutex
	users     map[int64]entity.User
	emails    map[string]int64
	twoFactor map[int64]entity.TwoFactorRecord
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[int64]entity.User),
		emails:    make(map[string]int64),
		twoFactor: make(map[int64]entity.TwoFactorRecord),
	}
}

// CreateUser stores a new user, returning goerror.ErrConflict when the email
// is already registered.
func (s *Memory) CreateUser(_ context.Context, user entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[user.Email]; ok {
		return goerror.ErrConflict
	}

	s.emails[user.Email] = user.ID
	s.users[user.ID] = user
	return nil
}

// GetUserByEmail loads a user by email.
func (s *Memory) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	user := s.users[id]
	return &user, nil
}

// GetUserByID loads a user by id.
func (s *Memory) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &user, nil
}

// GetTwoFactor loads the two-factor record for a user.
func (s *Memory) GetTwoFactor(_ context.Context, userID int64) (*entity.TwoFactorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.twoFactor[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	out := rec
	out.BackupCodes = append([]string(nil), rec.BackupCodes...)
	return &out, nil
}

// SaveTwoFactor writes the record, replacing any previous configuration.
func (s *Memory) SaveTwoFactor(_ context.Context, rec entity.TwoFactorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.BackupCodes = append([]string(nil), rec.BackupCodes...)
	s.twoFactor[rec.UserID] = rec
	return nil
}

// DeleteTwoFactor removes the record for a user.
func (s *Memory) DeleteTwoFactor(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.twoFactor, userID)
	return nil
}

// MutateTwoFactor runs fn against the user's record under the store lock.
func (s *Memory) MutateTwoFactor(_ context.Context, userID int64, fn func(rec *entity.TwoFactorRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.twoFactor[userID]
	if !ok {
		return goerror.ErrNotFound
	}

	work := rec
	work.BackupCodes = append([]string(nil), rec.BackupCodes...)
	if err := fn(&work); err != nil {
		return err
	}

	s.twoFactor[userID] = work
	return nil
}
