package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory user store with the same atomicity guarantees
// as the Postgres store, guarded by a single mutex. Used in tests and for
// running the server without a database.
type MemoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]User)}
}

func (s *MemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := u
	return &out, nil
}

func (s *MemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	for _, other := range s.users {
		if other.ID != id && other.Email == email {
			return ErrDuplicateEmail
		}
	}
	u.Email = email
	s.users[id] = u
	return nil
}

func (s *MemoryStore) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

func (s *MemoryStore) RecordFailedAttempt(_ context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		until := time.Now().Add(lockFor)
		u.LockUntil = &until
	}
	s.users[id] = u
	out := u
	return &out, nil
}

func (s *MemoryStore) RecordSuccessfulLogin(_ context.Context, id uuid.UUID, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockUntil = nil
	u.RefreshToken = refreshToken
	u.LoginCount++
	u.LastLogin = time.Now()
	s.users[id] = u
	return nil
}

func (s *MemoryStore) RotateRefreshToken(_ context.Context, id uuid.UUID, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.RefreshToken != current {
		return ErrRefreshMismatch
	}
	u.RefreshToken = next
	s.users[id] = u
	return nil
}

func (s *MemoryStore) ClearRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return nil
	}
	for id, u := range s.users {
		if u.RefreshToken == token {
			u.RefreshToken = ""
			s.users[id] = u
		}
	}
	return nil
}
