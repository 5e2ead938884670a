package users

import (
	"time"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

// User represents a portal account. Role and CustomPermissions are the two
// inputs the permission core resolves; everything else is profile data.
type User struct {
	ID                 int64
	Email              string
	Name               string
	Role               permissions.Role
	CustomPermissions  permissions.Set
	AssignedPreparerID *int64
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
