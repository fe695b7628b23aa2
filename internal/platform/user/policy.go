package user

import "strings"

// PasswordPolicy decides whether a plaintext password is acceptable at
// signup. The returned error is safe to show to the client.
type PasswordPolicy func(password string) error

// PolicyError reports why a password was rejected.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

// DefaultPasswordPolicy requires at least 6 characters and one digit.
func DefaultPasswordPolicy(password string) error {
	if len(password) < 6 {
		return &PolicyError{Reason: "Password must be at least 6 characters"}
	}
	if !strings.ContainsAny(password, "0123456789") {
		return &PolicyError{Reason: "Password must contain at least one number"}
	}
	return nil
}
