// Package jobs defines the portal's background task types and the asynq
// worker that processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeSendEmail is the task type for transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDocumentUploaded notifies the assigned preparer that a
	// client uploaded paperwork.
	TaskTypeDocumentUploaded = "documents:uploaded"
	// TaskTypeCommissionRollup recomputes affiliate commission summaries.
	TaskTypeCommissionRollup = "referrals:rollup"
	// TaskTypeLeadFollowup nudges pending lead accounts.
	TaskTypeLeadFollowup = "leads:followup"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Kind    string `json:"kind"`
}

// NewSendEmailTask constructs an asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// DocumentUploadedPayload identifies the freshly uploaded document.
type DocumentUploadedPayload struct {
	DocumentID  int64  `json:"document_id"`
	OwnerUserID int64  `json:"owner_user_id"`
	Name        string `json:"name"`
}

// NewDocumentUploadedTask constructs an asynq task.
func NewDocumentUploadedTask(payload DocumentUploadedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDocumentUploaded, data), nil
}

// NewCommissionRollupTask constructs the cron rollup task. No payload; the
// handler walks every affiliate.
func NewCommissionRollupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCommissionRollup, nil)
}

// NewLeadFollowupTask constructs the cron followup task.
func NewLeadFollowupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLeadFollowup, nil)
}
