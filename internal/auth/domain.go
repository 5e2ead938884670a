package auth

import (
	"time"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

// User represents an authenticated portal account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         permissions.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
