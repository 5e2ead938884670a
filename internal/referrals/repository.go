package referrals

import (
	"context"
	"errors"
)

// ErrNotFound indicates the record does not exist or belongs to someone else.
var ErrNotFound = errors.New("referrals: not found")

// ErrLinkInactive indicates the referral code exists but has been disabled.
var ErrLinkInactive = errors.New("referrals: link inactive")

// ErrStatusLocked indicates the commission is already paid or voided.
var ErrStatusLocked = errors.New("referrals: status locked")

// CommissionFilter restricts commission queries. OwnerID is the row-level
// predicate for affiliates.
type CommissionFilter struct {
	OwnerID *int64
	Status  *CommissionStatus
	Limit   int
	Offset  int
}

// Repository defines data access for links and commissions.
type Repository interface {
	CreateLink(ctx context.Context, link Link) (int64, error)
	GetLinkByCode(ctx context.Context, code string) (*Link, error)
	ListLinks(ctx context.Context, ownerID int64) ([]Link, error)
	DeactivateLink(ctx context.Context, ownerID, linkID int64) error

	CreateCommission(ctx context.Context, c Commission) (int64, error)
	GetCommission(ctx context.Context, id int64) (*Commission, error)
	ListCommissions(ctx context.Context, filter CommissionFilter) ([]Commission, int, error)
	UpdateCommissionStatus(ctx context.Context, id int64, status CommissionStatus) error
	SumCommissions(ctx context.Context, ownerID int64, status CommissionStatus) (int64, error)
	CountCommissions(ctx context.Context, ownerID int64) (int, error)
	ListOwners(ctx context.Context) ([]int64, error)
}

// ClickStore counts clicks per referral code.
type ClickStore interface {
	Record(ctx context.Context, code string) (int64, error)
	Count(ctx context.Context, code string) (int64, error)
}
