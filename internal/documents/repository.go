package documents

import (
	"context"
	"errors"
)

// ErrNotFound indicates the document does not exist or is outside the
// caller's visibility scope.
var ErrNotFound = errors.New("documents: not found")

// ErrInvalidInput indicates a request value outside the accepted vocabulary.
var ErrInvalidInput = errors.New("documents: invalid input")

// Filter restricts which rows a query returns. OwnerID pins to a single
// client; PreparerID pins to clients assigned to that preparer. Nil means
// unrestricted.
type Filter struct {
	OwnerID    *int64
	PreparerID *int64
	Kind       *Kind
	TaxYear    *int
	Limit      int
	Offset     int
}

// Repository defines data access for document metadata.
type Repository interface {
	Create(ctx context.Context, doc Document) (int64, error)
	Get(ctx context.Context, id int64) (*Document, error)
	List(ctx context.Context, filter Filter) ([]Document, int, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	// OwnerAssignedTo reports whether the owner is a client assigned to the
	// preparer. Staff visibility rides on the same assignment edge the
	// contact book uses.
	OwnerAssignedTo(ctx context.Context, ownerUserID, preparerID int64) (bool, error)
}
