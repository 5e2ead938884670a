package referrals

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/crm/contacts"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/permissions"
)

// Viewer identifies who is asking.
type Viewer = contacts.Viewer

// Service handles referral business logic.
type Service struct {
	repo    Repository
	clicks  ClickStore
	baseURL string
}

// NewService builds Service instance. baseURL is the public origin referral
// URLs are built against, e.g. https://portal.example.com.
func NewService(repo Repository, clicks ClickStore, baseURL string) *Service {
	return &Service{repo: repo, clicks: clicks, baseURL: strings.TrimRight(baseURL, "/")}
}

func adminRole(role permissions.Role) bool {
	return role == permissions.RoleSuperAdmin || role == permissions.RoleAdmin
}

// URL renders the shareable URL for a link.
func (s *Service) URL(link Link) string {
	return s.baseURL + "/r/" + link.Code
}

// Home is where dead referral codes land.
func (s *Service) Home() string {
	return s.baseURL + "/"
}

// CreateLink mints a referral link for the viewer. Every authenticated role
// may hold links; the tracking-code permission gates the HTTP surface.
func (s *Service) CreateLink(ctx context.Context, viewer Viewer, campaign *string, targetURL string) (*Link, error) {
	if targetURL == "" {
		targetURL = s.baseURL + "/signup"
	}
	link := Link{
		OwnerID:   viewer.UserID,
		Code:      uuid.NewString(),
		Campaign:  campaign,
		TargetURL: targetURL,
		IsActive:  true,
	}
	id, err := s.repo.CreateLink(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("create referral link: %w", err)
	}
	link.ID = id
	return &link, nil
}

// ListLinks returns the viewer's links with live click counts.
func (s *Service) ListLinks(ctx context.Context, viewer Viewer) ([]LinkStats, error) {
	links, err := s.repo.ListLinks(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list referral links: %w", err)
	}
	return s.withClicks(ctx, links)
}

// DeactivateLink disables one of the viewer's links. The code stops
// redirecting but its click history stays.
func (s *Service) DeactivateLink(ctx context.Context, viewer Viewer, linkID int64) error {
	return s.repo.DeactivateLink(ctx, viewer.UserID, linkID)
}

// Track resolves a referral code from the public redirect, records the
// click, and returns the destination URL. No session, no permission check.
func (s *Service) Track(ctx context.Context, code string) (string, error) {
	link, err := s.repo.GetLinkByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if !link.IsActive {
		return "", ErrLinkInactive
	}
	if _, err := s.clicks.Record(ctx, code); err != nil {
		// A lost click must not break the redirect.
		return link.TargetURL, nil
	}
	return link.TargetURL, nil
}

// Summarize builds the affiliate rollup: click totals fanned out per link
// plus commission sums per status, all gathered concurrently.
func (s *Service) Summarize(ctx context.Context, viewer Viewer, ownerID int64) (*Summary, error) {
	if ownerID != viewer.UserID && !adminRole(viewer.Role) {
		return nil, ErrNotFound
	}
	return s.summarize(ctx, ownerID)
}

// SummarizeAll computes the rollup for every affiliate that holds a link or
// a commission. Used by the nightly rollup job.
func (s *Service) SummarizeAll(ctx context.Context) ([]Summary, error) {
	owners, err := s.repo.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list referral owners: %w", err)
	}
	summaries := make([]Summary, 0, len(owners))
	for _, ownerID := range owners {
		summary, err := s.summarize(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

func (s *Service) summarize(ctx context.Context, ownerID int64) (*Summary, error) {
	links, err := s.repo.ListLinks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list referral links: %w", err)
	}

	summary := &Summary{OwnerID: ownerID}
	g, gctx := errgroup.WithContext(ctx)

	var stats []LinkStats
	g.Go(func() error {
		var err error
		stats, err = s.withClicks(gctx, links)
		return err
	})
	g.Go(func() error {
		sum, err := s.repo.SumCommissions(gctx, ownerID, CommissionPending)
		summary.PendingCents = sum
		return err
	})
	g.Go(func() error {
		sum, err := s.repo.SumCommissions(gctx, ownerID, CommissionApproved)
		summary.ApprovedCents = sum
		return err
	})
	g.Go(func() error {
		sum, err := s.repo.SumCommissions(gctx, ownerID, CommissionPaid)
		summary.PaidCents = sum
		return err
	})
	g.Go(func() error {
		count, err := s.repo.CountCommissions(gctx, ownerID)
		summary.CommissionCount = count
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.Links = stats
	for _, st := range stats {
		summary.TotalClicks += st.Clicks
	}
	return summary, nil
}

// ListCommissions returns commissions within the viewer's scope. Affiliates
// see their own; admins may filter by owner or see everything.
func (s *Service) ListCommissions(ctx context.Context, viewer Viewer, filter CommissionFilter) ([]Commission, int, error) {
	if !adminRole(viewer.Role) {
		filter.OwnerID = &viewer.UserID
	}
	return s.repo.ListCommissions(ctx, filter)
}

// RecordCommission creates a pending commission. Admin-only surface.
func (s *Service) RecordCommission(ctx context.Context, ownerID int64, linkID, contactID *int64, amountCents int64, memo *string) (*Commission, error) {
	c := Commission{
		OwnerID:     ownerID,
		LinkID:      linkID,
		ContactID:   contactID,
		AmountCents: amountCents,
		Status:      CommissionPending,
		Memo:        memo,
	}
	id, err := s.repo.CreateCommission(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("record commission: %w", err)
	}
	c.ID = id
	return &c, nil
}

// TransitionCommission moves a commission along pending → approved → paid.
// Paid and voided are final; void is reachable from any non-final status.
func (s *Service) TransitionCommission(ctx context.Context, id int64, to CommissionStatus) (*Commission, error) {
	c, err := s.repo.GetCommission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !validTransition(c.Status, to) {
		return nil, ErrStatusLocked
	}
	if err := s.repo.UpdateCommissionStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("transition commission: %w", err)
	}
	c.Status = to
	return c, nil
}

func (s *Service) withClicks(ctx context.Context, links []Link) ([]LinkStats, error) {
	stats := make([]LinkStats, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, link := range links {
		g.Go(func() error {
			clicks, err := s.clicks.Count(gctx, link.Code)
			if err != nil {
				return fmt.Errorf("count clicks for %s: %w", link.Code, err)
			}
			stats[i] = LinkStats{Link: link, Clicks: clicks}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func validTransition(from, to CommissionStatus) bool {
	switch from {
	case CommissionPending:
		return to == CommissionApproved || to == CommissionVoided
	case CommissionApproved:
		return to == CommissionPaid || to == CommissionVoided
	default:
		return false
	}
}
