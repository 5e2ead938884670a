package contacts

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

// Viewer identifies who is asking. The permission middleware has already
// established that the viewer holds the clients permission; this service
// layers row-level scoping on top, which is a separate concern from the
// permission grant itself.
type Viewer struct {
	UserID int64
	Role   permissions.Role
}

// Service handles contact business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var nameCaser = cases.Title(language.English)

// scope narrows a filter to what the viewer may see. Preparers are pinned
// to their own book of business; admin roles see everything. Any other role
// that reached this point through a permission override still gets the
// narrowest scope that can match nothing but its own assignments.
func (s *Service) scope(viewer Viewer, filter Filter) Filter {
	switch viewer.Role {
	case permissions.RoleSuperAdmin, permissions.RoleAdmin:
		return filter
	default:
		filter.PreparerID = &viewer.UserID
		return filter
	}
}

// visible reports whether the viewer may see an individual record.
func (s *Service) visible(viewer Viewer, contact *Contact) bool {
	switch viewer.Role {
	case permissions.RoleSuperAdmin, permissions.RoleAdmin:
		return true
	default:
		return contact.AssignedPreparerID != nil && *contact.AssignedPreparerID == viewer.UserID
	}
}

// List returns contacts within the viewer's scope.
func (s *Service) List(ctx context.Context, viewer Viewer, req ListContactsRequest) ([]Contact, int, error) {
	filter := Filter{
		Status: req.Status,
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	return s.repo.List(ctx, s.scope(viewer, filter))
}

// Get fetches a single contact, enforcing the viewer's scope. An existing
// record outside the scope reads as not found, not as forbidden.
func (s *Service) Get(ctx context.Context, viewer Viewer, id int64) (*Contact, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(viewer, contact) {
		return nil, ErrNotFound
	}
	return contact, nil
}

// Create inserts a contact. Preparers may only create into their own book.
func (s *Service) Create(ctx context.Context, viewer Viewer, req CreateContactRequest) (*Contact, error) {
	contact := Contact{
		FirstName:          normalizeName(req.FirstName),
		LastName:           normalizeName(req.LastName),
		Email:              req.Email,
		Phone:              req.Phone,
		Status:             StatusLead,
		AssignedPreparerID: req.AssignedPreparerID,
		Notes:              req.Notes,
		CreatedBy:          viewer.UserID,
	}
	if viewer.Role != permissions.RoleSuperAdmin && viewer.Role != permissions.RoleAdmin {
		contact.AssignedPreparerID = &viewer.UserID
	}

	id, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	contact.ID = id
	return &contact, nil
}

// Update applies a partial update within the viewer's scope.
func (s *Service) Update(ctx context.Context, viewer Viewer, id int64, req UpdateContactRequest) (*Contact, error) {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.FirstName != nil {
		updates["first_name"] = normalizeName(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = normalizeName(*req.LastName)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	// Reassignment is an administrative action.
	if req.AssignedPreparerID != nil && (viewer.Role == permissions.RoleSuperAdmin || viewer.Role == permissions.RoleAdmin) {
		updates["assigned_preparer_id"] = *req.AssignedPreparerID
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return s.Get(ctx, viewer, id)
}

// Delete removes a contact within the viewer's scope.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id int64) error {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func normalizeName(name string) string {
	return nameCaser.String(strings.TrimSpace(name))
}
