// Package referrals implements affiliate referral links, click tracking,
// and commission records.
package referrals

import "time"

// Link is a shareable referral URL owned by an affiliate. Code is the
// opaque token embedded in the URL; clicks are counted per code.
type Link struct {
	ID        int64
	OwnerID   int64
	Code      string
	Campaign  *string
	TargetURL string
	IsActive  bool
	CreatedAt time.Time
}

// CommissionStatus tracks payout lifecycle.
type CommissionStatus string

const (
	CommissionPending  CommissionStatus = "pending"
	CommissionApproved CommissionStatus = "approved"
	CommissionPaid     CommissionStatus = "paid"
	CommissionVoided   CommissionStatus = "voided"
)

// IsValid checks if the status is valid.
func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionPending, CommissionApproved, CommissionPaid, CommissionVoided:
		return true
	default:
		return false
	}
}

// Commission is an amount owed to an affiliate for a referred signup.
// AmountCents avoids float money.
type Commission struct {
	ID          int64
	OwnerID     int64
	LinkID      *int64
	ContactID   *int64
	AmountCents int64
	Status      CommissionStatus
	Memo        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LinkStats pairs a link with its live click count.
type LinkStats struct {
	Link
	Clicks int64
}

// Summary is the affiliate-facing rollup.
type Summary struct {
	OwnerID         int64
	TotalClicks     int64
	Links           []LinkStats
	PendingCents    int64
	ApprovedCents   int64
	PaidCents       int64
	CommissionCount int
}
