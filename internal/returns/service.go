package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/contacts"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

// Viewer identifies who is asking.
type Viewer = contacts.Viewer

// Service handles tax-return pipeline logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func adminRole(role permissions.Role) bool {
	return role == permissions.RoleSuperAdmin || role == permissions.RoleAdmin
}

func (s *Service) scope(viewer Viewer, filter Filter) Filter {
	switch {
	case adminRole(viewer.Role):
		return filter
	case viewer.Role == permissions.RoleTaxPreparer:
		filter.PreparerID = &viewer.UserID
		return filter
	default:
		filter.ClientID = &viewer.UserID
		filter.PreparerID = nil
		return filter
	}
}

func (s *Service) visible(viewer Viewer, ret *TaxReturn) bool {
	switch {
	case adminRole(viewer.Role):
		return true
	case viewer.Role == permissions.RoleTaxPreparer:
		return ret.PreparerID == viewer.UserID
	default:
		return ret.ClientID == viewer.UserID
	}
}

// List returns tax returns within the viewer's scope.
func (s *Service) List(ctx context.Context, viewer Viewer, filter Filter) ([]TaxReturn, int, error) {
	return s.repo.List(ctx, s.scope(viewer, filter))
}

// Get fetches a single return, enforcing the viewer's scope.
func (s *Service) Get(ctx context.Context, viewer Viewer, id int64) (*TaxReturn, error) {
	ret, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.visible(viewer, ret) {
		return nil, ErrNotFound
	}
	return ret, nil
}

// Open starts a return at intake. Preparers open returns onto their own
// workload; admins may assign any preparer.
func (s *Service) Open(ctx context.Context, viewer Viewer, clientID int64, preparerID int64, taxYear int, notes *string) (*TaxReturn, error) {
	if !adminRole(viewer.Role) {
		preparerID = viewer.UserID
	}
	ret := TaxReturn{
		ClientID:   clientID,
		PreparerID: preparerID,
		TaxYear:    taxYear,
		Status:     StatusIntake,
		Notes:      notes,
	}
	id, err := s.repo.Create(ctx, ret)
	if err != nil {
		return nil, err
	}
	ret.ID = id
	return &ret, nil
}

// Transition moves a return along the pipeline within the viewer's scope.
// Reaching filed stamps FiledAt.
func (s *Service) Transition(ctx context.Context, viewer Viewer, id int64, to Status, notes *string) (*TaxReturn, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadTransition, to)
	}
	ret, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if !ret.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, ret.Status, to)
	}

	updates := map[string]any{"status": string(to)}
	if to == StatusFiled {
		updates["filed_at"] = time.Now().UTC()
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("transition return: %w", err)
	}
	return s.Get(ctx, viewer, id)
}
