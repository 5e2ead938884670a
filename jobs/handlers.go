package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/iradwatkins/taxgeniusprov1-sub000/internal/jobs"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/referrals"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/users"
)

// RecipientSource resolves who should be told about a client's upload.
type RecipientSource interface {
	NotificationEmailFor(ctx context.Context, ownerUserID int64) (string, error)
}

// RollupSource computes affiliate commission summaries.
type RollupSource interface {
	SummarizeAll(ctx context.Context) ([]referrals.Summary, error)
}

// LeadSource lists lead accounts still waiting for approval.
type LeadSource interface {
	ListPendingLeads(ctx context.Context) ([]users.User, error)
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks.
func NewSendEmailHandler(mailer Mailer, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeSendEmail)
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		err := mailer.Send(ctx, payload.To, payload.Subject, payload.Body)
		if err == nil {
			kind := payload.Kind
			if kind == "" {
				kind = "generic"
			}
			metrics.AddEmail(kind)
		} else {
			logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		}
		return tracker.End(err)
	}
}

// NewDocumentUploadedHandler resolves the notification recipient and sends
// the upload email inline.
func NewDocumentUploadedHandler(recipients RecipientSource, mailer Mailer, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeDocumentUploaded)
		var payload DocumentUploadedPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			_ = tracker.End(err)
			return asynq.SkipRetry
		}
		to, err := recipients.NotificationEmailFor(ctx, payload.OwnerUserID)
		if err != nil {
			return tracker.End(fmt.Errorf("resolve recipient: %w", err))
		}
		subject := "New document uploaded"
		body := fmt.Sprintf("A new document %q was uploaded to the client folder (document #%d).\nSign in to review it.", payload.Name, payload.DocumentID)
		if err := mailer.Send(ctx, to, subject, body); err != nil {
			logger.Error("document upload notification", slog.Int64("document_id", payload.DocumentID), slog.Any("error", err))
			return tracker.End(err)
		}
		metrics.AddEmail("document_uploaded")
		return tracker.End(nil)
	}
}

// NewCommissionRollupHandler recomputes every affiliate's rollup and logs
// the totals.
func NewCommissionRollupHandler(rollups RollupSource, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeCommissionRollup)
		summaries, err := rollups.SummarizeAll(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, summary := range summaries {
			logger.Info("commission rollup",
				slog.Int64("owner_id", summary.OwnerID),
				slog.Int64("clicks", summary.TotalClicks),
				slog.Int64("pending_cents", summary.PendingCents),
				slog.Int64("approved_cents", summary.ApprovedCents),
				slog.Int64("paid_cents", summary.PaidCents),
			)
		}
		return tracker.End(nil)
	}
}

// NewLeadFollowupHandler emails every pending lead a reminder that their
// account is still waiting on approval.
func NewLeadFollowupHandler(leads LeadSource, mailer Mailer, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeLeadFollowup)
		pending, err := leads.ListPendingLeads(ctx)
		if err != nil {
			return tracker.End(err)
		}
		for _, lead := range pending {
			body := fmt.Sprintf("Hi %s,\n\nYour account is still pending approval. We'll notify you as soon as it is activated.", lead.Name)
			if err := mailer.Send(ctx, lead.Email, "Your account is pending approval", body); err != nil {
				logger.Error("lead followup", slog.Int64("user_id", lead.ID), slog.Any("error", err))
				continue
			}
			metrics.AddEmail("lead_followup")
		}
		return tracker.End(nil)
	}
}
