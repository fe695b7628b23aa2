package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the Postgres-backed user store. All mutating operations that
// participate in the login/refresh lifecycle run as single UPDATE statements
// so concurrent attempts on the same account cannot interleave partial state.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, user *User) error {
	result := s.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return result.Error
	}
	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	var users []User
	result := s.db.WithContext(ctx).Order("created_at DESC").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("email", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordFailedAttempt increments the failed login counter and, when the
// incremented count crosses the threshold, sets the lock window in the same
// statement. Returns the updated record.
func (s *Store) RecordFailedAttempt(ctx context.Context, id uuid.UUID, maxAttempts int, lockFor time.Duration) (*User, error) {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE account."user"
		 SET failed_login_attempts = failed_login_attempts + 1,
		     lock_until = CASE WHEN failed_login_attempts + 1 >= ?
		                       THEN now() + make_interval(secs => ?)
		                       ELSE lock_until END
		 WHERE id = ?`,
		maxAttempts, lockFor.Seconds(), id)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// RecordSuccessfulLogin resets the lockout state and writes the fresh refresh
// token into the single slot, revoking whatever was there before.
func (s *Store) RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, refreshToken string) error {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE account."user"
		 SET failed_login_attempts = 0,
		     lock_until = NULL,
		     refresh_token = ?,
		     login_count = login_count + 1,
		     last_login = now()
		 WHERE id = ?`,
		refreshToken, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateRefreshToken swaps the stored refresh token for a new one, but only
// if the presented token still matches the slot. A zero row count means the
// token was already rotated or revoked.
func (s *Store) RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error {
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND refresh_token = ?", id, current).
		Update("refresh_token", next)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshMismatch
	}
	return nil
}

// ClearRefreshToken revokes the slot holding the given token value.
// Best-effort: clearing a token that matches nothing is not an error.
func (s *Store) ClearRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("refresh_token = ?", token).
		Update("refresh_token", "")
	return result.Error
}
