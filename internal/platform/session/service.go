package session

import (
	"context"
	"errors"

	"authgate/internal/auth"
	"authgate/internal/database"
	"authgate/internal/platform/user"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service orchestrates the account session lifecycle: signup, login with
// lockout, refresh rotation and logout.
type Service struct {
	users  *user.UserService
	tokens *auth.TokenService
}

func NewService(users *user.UserService, tokens *auth.TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

// Signup registers a new account and returns it. The caller is expected to
// redact before responding.
func (s *Service) Signup(ctx context.Context, email, password string) (*database.User, error) {
	return s.users.Create(ctx, email, password)
}

// Login verifies credentials and mints a fresh token pair. The stored
// refresh slot is overwritten, revoking any earlier refresh token.
//
// The lock check runs before password verification: a locked account rejects
// the attempt without touching the counter or comparing hashes.
func (s *Service) Login(ctx context.Context, email, password string) (*database.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}

	if s.users.IsLocked(u) {
		return nil, TokenPair{}, &LockedError{Until: *u.LockUntil}
	}

	if !s.users.VerifyPassword(u, password) {
		updated, err := s.users.RecordFailedAttempt(ctx, u.ID)
		if err != nil {
			return nil, TokenPair{}, err
		}
		if s.users.IsLocked(updated) {
			return nil, TokenPair{}, &LockedError{Until: *updated.LockUntil}
		}
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.GenerateAccessToken(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := s.users.RecordSuccessfulLogin(ctx, u.ID, refreshToken); err != nil {
		return nil, TokenPair{}, err
	}

	u.FailedLoginAttempts = 0
	u.LockUntil = nil
	u.RefreshToken = refreshToken

	return u, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates a presented refresh token for a new pair. The swap is a
// compare-and-swap against the stored slot, so a token that was already
// rotated or revoked fails even when its signature is still valid.
func (s *Service) Refresh(ctx context.Context, presented string) (*database.User, TokenPair, error) {
	if presented == "" {
		return nil, TokenPair{}, ErrNoRefreshToken
	}

	userID, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidRefreshToken
		}
		return nil, TokenPair{}, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	if err := s.users.RotateRefreshToken(ctx, u.ID, presented, refreshToken); err != nil {
		if errors.Is(err, database.ErrRefreshMismatch) {
			return nil, TokenPair{}, ErrInvalidRefreshToken
		}
		return nil, TokenPair{}, err
	}

	u.RefreshToken = refreshToken

	return u, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout clears the stored slot holding the presented token. Best-effort: an
// unknown or empty token is not an error, so responses cannot leak whether
// the token was live.
func (s *Service) Logout(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}
	return s.users.ClearRefreshToken(ctx, presented)
}
