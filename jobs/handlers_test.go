package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/iradwatkins/taxgeniusprov1-sub000/internal/jobs"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/referrals"
	"github.com/iradwatkins/taxgeniusprov1-sub000/internal/users"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	sent []sentMail
	err  error
}

func (m *stubMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type stubRecipients struct {
	email string
	err   error
}

func (s stubRecipients) NotificationEmailFor(ctx context.Context, ownerUserID int64) (string, error) {
	return s.email, s.err
}

type stubRollups struct {
	summaries []referrals.Summary
}

func (s stubRollups) SummarizeAll(ctx context.Context) ([]referrals.Summary, error) {
	return s.summaries, nil
}

type stubLeads struct {
	leads []users.User
}

func (s stubLeads) ListPendingLeads(ctx context.Context) ([]users.User, error) {
	return s.leads, nil
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendEmailHandlerDelivers(t *testing.T) {
	mailer := &stubMailer{}
	handler := NewSendEmailHandler(mailer, testMetrics(), testLogger())

	task, err := NewSendEmailTask(SendEmailPayload{To: "client@example.com", Subject: "hello", Body: "hi", Kind: "welcome"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "client@example.com", mailer.sent[0].to)
}

func TestSendEmailHandlerSkipsRetryOnBadPayload(t *testing.T) {
	handler := NewSendEmailHandler(&stubMailer{}, testMetrics(), testLogger())
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))
	err := handler(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDocumentUploadedHandlerResolvesRecipient(t *testing.T) {
	mailer := &stubMailer{}
	handler := NewDocumentUploadedHandler(stubRecipients{email: "preparer@example.com"}, mailer, testMetrics(), testLogger())

	task, err := NewDocumentUploadedTask(DocumentUploadedPayload{DocumentID: 7, OwnerUserID: 500, Name: "W-2.pdf"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "preparer@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "W-2.pdf")
}

func TestDocumentUploadedHandlerPropagatesLookupError(t *testing.T) {
	handler := NewDocumentUploadedHandler(stubRecipients{err: errors.New("db down")}, &stubMailer{}, testMetrics(), testLogger())
	task, err := NewDocumentUploadedTask(DocumentUploadedPayload{DocumentID: 7, OwnerUserID: 500, Name: "W-2.pdf"})
	require.NoError(t, err)
	assert.Error(t, handler(context.Background(), task), "lookup failures must retry")
}

func TestCommissionRollupHandlerWalksSummaries(t *testing.T) {
	rollups := stubRollups{summaries: []referrals.Summary{
		{OwnerID: 300, TotalClicks: 5, PendingCents: 2500},
		{OwnerID: 400, TotalClicks: 1},
	}}
	handler := NewCommissionRollupHandler(rollups, testMetrics(), testLogger())
	require.NoError(t, handler(context.Background(), NewCommissionRollupTask()))
}

func TestLeadFollowupHandlerEmailsEveryPendingLead(t *testing.T) {
	mailer := &stubMailer{}
	leads := stubLeads{leads: []users.User{
		{ID: 1, Email: "a@example.com", Name: "Ada"},
		{ID: 2, Email: "b@example.com", Name: "Ben"},
	}}
	handler := NewLeadFollowupHandler(leads, mailer, testMetrics(), testLogger())

	require.NoError(t, handler(context.Background(), NewLeadFollowupTask()))
	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[0].body, "Ada")
	assert.Contains(t, mailer.sent[1].body, "pending approval")
}

func TestSendEmailTaskPayloadRoundTrips(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "x@example.com", Subject: "s", Body: "b", Kind: "k"})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())

	var payload SendEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "x@example.com", payload.To)
}
