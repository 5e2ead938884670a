package returns

import (
	"context"
	"errors"
)

// ErrNotFound indicates the return does not exist or is outside the
// caller's visibility scope.
var ErrNotFound = errors.New("returns: not found")

// ErrBadTransition indicates an illegal pipeline move.
var ErrBadTransition = errors.New("returns: illegal status transition")

// ErrDuplicateYear indicates the client already has a return for the year.
var ErrDuplicateYear = errors.New("returns: year already open")

// Filter restricts which rows a query returns.
type Filter struct {
	ClientID   *int64
	PreparerID *int64
	Status     *Status
	TaxYear    *int
	Limit      int
	Offset     int
}

// Repository defines data access for tax returns.
type Repository interface {
	Create(ctx context.Context, ret TaxReturn) (int64, error)
	Get(ctx context.Context, id int64) (*TaxReturn, error)
	List(ctx context.Context, filter Filter) ([]TaxReturn, int, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}
