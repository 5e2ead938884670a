package documents

type UploadDocumentRequest struct {
	OwnerUserID *int64 `json:"owner_user_id,omitempty" validate:"omitempty,gt=0"`
	Name        string `json:"name" validate:"required,max=255"`
	Kind        Kind   `json:"kind" validate:"required"`
	TaxYear     int    `json:"tax_year" validate:"required,gte=2000,lte=2100"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

type RenameDocumentRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type ListDocumentsRequest struct {
	OwnerID *int64
	Kind    *Kind
	TaxYear *int
	Limit   int
	Offset  int
}
