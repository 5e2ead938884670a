package contacts

import (
	"context"
	"errors"
)

// ErrNotFound indicates the contact does not exist or is outside the
// caller's visibility scope.
var ErrNotFound = errors.New("contacts: not found")

// ErrDuplicateEmail indicates a contact with the email already exists.
var ErrDuplicateEmail = errors.New("contacts: email already exists")

// Filter restricts which rows a query returns. PreparerID is the row-level
// visibility predicate; nil means unrestricted.
type Filter struct {
	Status     *Status
	Search     *string
	PreparerID *int64
	Limit      int
	Offset     int
}

// Repository defines data access for contacts.
type Repository interface {
	Create(ctx context.Context, contact Contact) (int64, error)
	Get(ctx context.Context, id int64) (*Contact, error)
	List(ctx context.Context, filter Filter) ([]Contact, int, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
}
