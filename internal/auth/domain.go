package auth

import (
	"time"

	"github.com/noah-isme/employee-tracker/internal/users"
)

// Token is a persisted bearer credential. Only the hash of its secret is stored.
type Token struct {
	ID         string
	UserID     int64
	Name       string
	Hash       string
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

// Result is returned by register and login. PlainToken is only ever available here.
type Result struct {
	User       *users.User
	PlainToken string
}

// RegisterInput carries the decoded register payload before schema checks.
type RegisterInput struct {
	Name                 any `json:"name"`
	Email                any `json:"email"`
	Password             any `json:"password"`
	PasswordConfirmation any `json:"password_confirmation"`
}

// LoginInput carries the decoded login payload before schema checks.
type LoginInput struct {
	Email    any `json:"email"`
	Password any `json:"password"`
}
