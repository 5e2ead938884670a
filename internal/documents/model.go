// Package documents tracks tax document metadata. File storage itself lives
// elsewhere; these records are what the portal lists, gates, and audits.
package documents

import "time"

// Kind classifies a document for intake checklists.
type Kind string

const (
	KindW2      Kind = "w2"
	KindTen99   Kind = "1099"
	KindIDProof Kind = "id_proof"
	KindReceipt Kind = "receipt"
	KindReturn  Kind = "return_copy"
	KindOther   Kind = "other"
)

// IsValid checks if the kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindW2, KindTen99, KindIDProof, KindReceipt, KindReturn, KindOther:
		return true
	default:
		return false
	}
}

// Document is a metadata record for an uploaded file. OwnerUserID is the
// client the document belongs to; visibility follows ownership for clients
// and preparer assignment for staff.
type Document struct {
	ID          int64
	OwnerUserID int64
	Name        string
	Kind        Kind
	TaxYear     int
	SizeBytes   int64
	StorageKey  string
	UploadedBy  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
