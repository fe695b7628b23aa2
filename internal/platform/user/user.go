package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"authgate/internal/database"
	"authgate/pkg/utils"
)

const (
	DefaultMaxAttempts  = 5
	DefaultLockDuration = 2 * time.Hour
)

// Store is the durable user store consumed by the service. Implemented by
// database.Store (Postgres) and database.MemoryStore.
type Store interface {
	Create(ctx context.Context, user *database.User) error
	GetByEmail(ctx context.Context, email string) (*database.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*database.User, error)
	List(ctx context.Context) ([]database.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	RecordFailedAttempt(ctx context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration) (*database.User, error)
	RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, refreshToken string) error
	RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error
	ClearRefreshToken(ctx context.Context, token string) error
}

type UserService struct {
	store        Store
	policy       PasswordPolicy
	maxAttempts  int
	lockDuration time.Duration
}

func NewService(store Store) *UserService {
	return &UserService{
		store:        store,
		policy:       DefaultPasswordPolicy,
		maxAttempts:  DefaultMaxAttempts,
		lockDuration: DefaultLockDuration,
	}
}

// SetLockout overrides the failed-attempt threshold and lock window.
func (s *UserService) SetLockout(maxAttempts int, lockFor time.Duration) {
	s.maxAttempts = maxAttempts
	s.lockDuration = lockFor
}

// SetPasswordPolicy replaces the password acceptance policy.
func (s *UserService) SetPasswordPolicy(policy PasswordPolicy) {
	s.policy = policy
}

// NormalizeEmail lower-cases and trims an email address. Every lookup and
// write goes through this so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new account with role "user" after checking the
// password policy. The plaintext password is hashed and discarded.
func (s *UserService) Create(ctx context.Context, email, password string) (*database.User, error) {
	if err := s.policy(password); err != nil {
		return nil, err
	}

	user := &database.User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: utils.HashPassword(password),
		Role:         database.RoleUser,
		CreatedAt:    time.Now(),
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*database.User, error) {
	return s.store.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*database.User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]database.User, error) {
	return s.store.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *UserService) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return s.store.UpdateEmail(ctx, id, NormalizeEmail(email))
}

func (s *UserService) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return s.store.UpdateRole(ctx, id, role)
}

// VerifyPassword compares the plaintext against the stored hash in constant
// time. An account without a hash never verifies.
func (s *UserService) VerifyPassword(user *database.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return utils.VerifyPassword(password, user.PasswordHash)
}

// IsLocked reports whether the account is inside its lock window. Lockout is
// time-bound: an elapsed window unlocks without any counter write.
func (s *UserService) IsLocked(user *database.User) bool {
	return user.LockUntil != nil && time.Now().Before(*user.LockUntil)
}

// LockRemaining returns how long the lock window still has to run.
func (s *UserService) LockRemaining(user *database.User) time.Duration {
	if user.LockUntil == nil {
		return 0
	}
	return time.Until(*user.LockUntil)
}

// RecordFailedAttempt bumps the counter, locking the account when the
// threshold is crossed, and returns the updated record.
func (s *UserService) RecordFailedAttempt(ctx context.Context, id uuid.UUID) (*database.User, error) {
	return s.store.RecordFailedAttempt(ctx, id, s.maxAttempts, s.lockDuration)
}

// RecordSuccessfulLogin resets lockout state and installs the refresh token,
// revoking the previous one.
func (s *UserService) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, refreshToken string) error {
	return s.store.RecordSuccessfulLogin(ctx, id, refreshToken)
}

func (s *UserService) RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error {
	return s.store.RotateRefreshToken(ctx, id, current, next)
}

func (s *UserService) ClearRefreshToken(ctx context.Context, token string) error {
	return s.store.ClearRefreshToken(ctx, token)
}
