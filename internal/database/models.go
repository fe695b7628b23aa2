package database

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the assignable account roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User represents a user account in the system. Email is stored lower-cased.
type User struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Email               string     `json:"email" gorm:"uniqueIndex"`
	PasswordHash        string     `json:"-"`
	Role                string     `json:"role" gorm:"default:'user'"`
	RefreshToken        string     `json:"-"`
	FailedLoginAttempts int        `json:"-" gorm:"default:0"`
	LockUntil           *time.Time `json:"-"`
	LastLogin           time.Time  `json:"-" gorm:"default:now()"`
	LoginCount          int        `json:"-" gorm:"default:0"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// TableName specifies the database table name for the User model
func (u *User) TableName() string {
	return "account.user"
}

// Redacted returns a copy safe to hand to the request pipeline: the password
// hash and the refresh slot are stripped.
func (u User) Redacted() User {
	u.PasswordHash = ""
	u.RefreshToken = ""
	return u
}
