package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"log/slog"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/shared"
)

// ErrNotEditable indicates an override patch touched only permissions the
// target role's editable list does not allow.
var ErrNotEditable = errors.New("users: permission not editable for role")

// ErrInvalidPromotion indicates a role change outside the allowed lifecycle.
var ErrInvalidPromotion = errors.New("users: invalid role promotion")

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	UpdateRole(ctx context.Context, id int64, role permissions.Role) error
	UpdateCustomPermissions(ctx context.Context, id int64, overrides permissions.Set) error
}

// AuditRecorder captures administrative actions.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles account business logic and is the permission core's
// profile source: it loads (role, overrides) pairs and resolves them.
type Service struct {
	repo     RepositoryPort
	resolver *permissions.Resolver
	audit    AuditRecorder
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, resolver *permissions.Resolver, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit, logger: logger}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// PermissionsFor resolves the effective permission set for a user. This is
// the Source the authorization middleware consults on every guarded request.
func (s *Service) PermissionsFor(ctx context.Context, userID int64) (permissions.Set, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(user.Role, user.CustomPermissions), nil
}

// RoleAndOverrides exposes the raw resolution inputs for a user, for the
// navigation and effective-permission endpoints.
func (s *Service) RoleAndOverrides(ctx context.Context, userID int64) (permissions.Role, permissions.Set, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return user.Role, user.CustomPermissions, nil
}

// UpdateOverrides merges an administrator's override patch into a user's
// stored custom permissions. The patch is filtered through the target
// role's editable list first; the resolver itself never re-checks, so this
// is the single enforcement point for the editable ceiling. Entries the
// ceiling rejects fail the whole request rather than being silently
// dropped, so the editor UI learns about its own drift immediately.
func (s *Service) UpdateOverrides(ctx context.Context, actorID, targetID int64, patch permissions.Set) (permissions.Set, error) {
	target, err := s.repo.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	for perm := range patch {
		if !permissions.CanEdit(target.Role, perm) {
			return nil, fmt.Errorf("%w: %s for %s", ErrNotEditable, perm, target.Role)
		}
	}

	merged := target.CustomPermissions.Clone()
	if merged == nil {
		merged = permissions.Set{}
	}
	for perm, granted := range patch {
		merged[perm] = granted
	}

	if err := s.repo.UpdateCustomPermissions(ctx, targetID, merged); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "permissions.override", targetID, map[string]any{"patch": patch})
	return merged, nil
}

// ClearOverrides removes every stored override, returning the user to the
// role's defaults.
func (s *Service) ClearOverrides(ctx context.Context, actorID, targetID int64) error {
	if _, err := s.repo.GetUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.repo.UpdateCustomPermissions(ctx, targetID, nil); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "permissions.clear", targetID, nil)
	return nil
}

// promotions enumerates the allowed role lifecycle transitions. Leads are
// approved into one of the three operating roles; anything else is an
// administrative re-assignment outside this service.
var promotions = map[permissions.Role][]permissions.Role{
	permissions.RoleLead: {permissions.RoleClient, permissions.RoleAffiliate, permissions.RoleTaxPreparer},
}

// PromoteLead approves a pending lead into an operating role.
func (s *Service) PromoteLead(ctx context.Context, actorID, targetID int64, newRole permissions.Role) error {
	target, err := s.repo.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	allowed := false
	for _, candidate := range promotions[target.Role] {
		if candidate == newRole {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPromotion, target.Role, newRole)
	}
	if err := s.repo.UpdateRole(ctx, targetID, newRole); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "users.promote", targetID, map[string]any{"from": target.Role, "to": newRole})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
