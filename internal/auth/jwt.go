package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authgate/internal/config"
)

// ErrInvalidToken is the uniform verification failure: bad signature, wrong
// token kind and expiry are deliberately indistinguishable to the caller.
var ErrInvalidToken = errors.New("invalid token")

// TokenService signs and verifies access and refresh tokens. The two kinds
// use separate secrets so a compromise of one cannot forge the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessExpiry:  cfg.AccessTokenExpiry,
		refreshExpiry: cfg.RefreshTokenExpiry,
	}
}

func (s *TokenService) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return s.generate(userID, s.accessSecret, s.accessExpiry)
}

func (s *TokenService) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return s.generate(userID, s.refreshSecret, s.refreshExpiry)
}

// VerifyAccessToken returns the subject user id, or ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(token string) (uuid.UUID, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefreshToken returns the subject user id, or ErrInvalidToken.
func (s *TokenService) VerifyRefreshToken(token string) (uuid.UUID, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) generate(userID uuid.UUID, secret []byte, expiry time.Duration) (string, error) {
	// The jti keeps tokens unique even when two are minted for the same
	// subject within the same second; refresh rotation depends on the new
	// token differing from the one it replaces.
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *TokenService) verify(tokenString string, secret []byte) (uuid.UUID, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
