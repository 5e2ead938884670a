// Package returns tracks the filing status of client tax returns. The
// portal only moves returns through the pipeline; tax math happens in the
// preparation software.
package returns

import "time"

// Status is the filing pipeline stage.
type Status string

const (
	StatusIntake    Status = "intake"
	StatusInReview  Status = "in_review"
	StatusReadyFile Status = "ready_to_file"
	StatusFiled     Status = "filed"
	StatusRejected  Status = "rejected"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusIntake, StatusInReview, StatusReadyFile, StatusFiled, StatusRejected:
		return true
	default:
		return false
	}
}

// next reports the legal transitions out of a stage. Filed is final;
// rejected returns to review once the problem is fixed.
func (s Status) next() []Status {
	switch s {
	case StatusIntake:
		return []Status{StatusInReview}
	case StatusInReview:
		return []Status{StatusReadyFile, StatusRejected}
	case StatusReadyFile:
		return []Status{StatusFiled, StatusRejected}
	case StatusRejected:
		return []Status{StatusInReview}
	default:
		return nil
	}
}

// CanTransition reports whether the move is legal.
func (s Status) CanTransition(to Status) bool {
	for _, allowed := range s.next() {
		if allowed == to {
			return true
		}
	}
	return false
}

// TaxReturn is one client's return for one tax year.
type TaxReturn struct {
	ID         int64
	ClientID   int64
	PreparerID int64
	TaxYear    int
	Status     Status
	FiledAt    *time.Time
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
