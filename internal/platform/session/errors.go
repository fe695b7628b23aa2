package session

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// responses cannot leak which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoRefreshToken is returned when refresh is attempted without a
	// token.
	ErrNoRefreshToken = errors.New("no refresh token provided")

	// ErrInvalidRefreshToken covers every refresh failure: bad signature,
	// expiry, unknown user, or a token that no longer matches the stored
	// slot.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// LockedError signals that the account is inside its lock window.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.RemainingMinutes())
}

// RemainingMinutes returns the minutes left in the lock window, rounded up,
// never less than 1 while the lock holds.
func (e *LockedError) RemainingMinutes() int {
	remaining := time.Until(e.Until)
	if remaining <= 0 {
		return 0
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
