package documents

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/contacts"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

// Viewer identifies who is asking.
type Viewer = contacts.Viewer

// Notifier enqueues the upload notification that tells the assigned preparer
// new paperwork arrived. Failures are logged, never surfaced to the uploader.
type Notifier interface {
	DocumentUploaded(ctx context.Context, documentID, ownerUserID int64, name string) error
}

// Service handles document metadata business logic.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

func adminRole(role permissions.Role) bool {
	return role == permissions.RoleSuperAdmin || role == permissions.RoleAdmin
}

func staffRole(role permissions.Role) bool {
	return adminRole(role) || role == permissions.RoleTaxPreparer
}

func (s *Service) scope(viewer Viewer, filter Filter) Filter {
	switch {
	case adminRole(viewer.Role):
		return filter
	case viewer.Role == permissions.RoleTaxPreparer:
		filter.PreparerID = &viewer.UserID
		return filter
	default:
		// Clients (and anyone below staff) only see their own folder,
		// regardless of what owner filter they asked for.
		filter.OwnerID = &viewer.UserID
		filter.PreparerID = nil
		return filter
	}
}

func (s *Service) visible(ctx context.Context, viewer Viewer, doc *Document) (bool, error) {
	switch {
	case adminRole(viewer.Role):
		return true, nil
	case viewer.Role == permissions.RoleTaxPreparer:
		if doc.OwnerUserID == viewer.UserID {
			return true, nil
		}
		return s.repo.OwnerAssignedTo(ctx, doc.OwnerUserID, viewer.UserID)
	default:
		return doc.OwnerUserID == viewer.UserID, nil
	}
}

// List returns document metadata within the viewer's scope.
func (s *Service) List(ctx context.Context, viewer Viewer, req ListDocumentsRequest) ([]Document, int, error) {
	filter := Filter{
		OwnerID: req.OwnerID,
		Kind:    req.Kind,
		TaxYear: req.TaxYear,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}
	return s.repo.List(ctx, s.scope(viewer, filter))
}

// Get fetches a single document record, enforcing the viewer's scope.
func (s *Service) Get(ctx context.Context, viewer Viewer, id int64) (*Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.visible(ctx, viewer, doc)
	if err != nil {
		return nil, fmt.Errorf("check document visibility: %w", err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Upload records a document. Clients upload into their own folder; staff may
// upload on behalf of a client within their scope.
func (s *Service) Upload(ctx context.Context, viewer Viewer, req UploadDocumentRequest) (*Document, error) {
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, req.Kind)
	}

	owner := viewer.UserID
	if req.OwnerUserID != nil && staffRole(viewer.Role) {
		owner = *req.OwnerUserID
		if viewer.Role == permissions.RoleTaxPreparer && owner != viewer.UserID {
			assigned, err := s.repo.OwnerAssignedTo(ctx, owner, viewer.UserID)
			if err != nil {
				return nil, fmt.Errorf("check owner assignment: %w", err)
			}
			if !assigned {
				return nil, ErrNotFound
			}
		}
	}

	doc := Document{
		OwnerUserID: owner,
		Name:        strings.TrimSpace(req.Name),
		Kind:        req.Kind,
		TaxYear:     req.TaxYear,
		SizeBytes:   req.SizeBytes,
		StorageKey:  uuid.NewString(),
		UploadedBy:  viewer.UserID,
	}
	id, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	doc.ID = id

	if s.notifier != nil {
		if err := s.notifier.DocumentUploaded(ctx, doc.ID, doc.OwnerUserID, doc.Name); err != nil {
			s.logger.Error("enqueue upload notification", slog.Int64("document_id", doc.ID), slog.Any("error", err))
		}
	}
	return &doc, nil
}

// Rename changes the display name within the viewer's scope.
func (s *Service) Rename(ctx context.Context, viewer Viewer, id int64, name string) (*Document, error) {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return nil, err
	}
	if err := s.repo.Rename(ctx, id, strings.TrimSpace(name)); err != nil {
		return nil, fmt.Errorf("rename document: %w", err)
	}
	return s.Get(ctx, viewer, id)
}

// Delete removes a metadata record within the viewer's scope.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id int64) error {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
