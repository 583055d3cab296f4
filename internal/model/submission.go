// internal/model/submission.go
package model

import "time"

// Submission statuses. "pending" is the only state the executor will pick back
// up on resume; everything else is terminal.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusConfirmed = "confirmed"
	SubmissionStatusFailed    = "failed"
	SubmissionStatusSkipped   = "skipped"
)

// Submission is one (fake profile x target site) unit of work tracked to a
// terminal outcome.
type Submission struct {
	ID           int        `db:"id" json:"id"`
	CampaignID   int        `db:"campaign_id" json:"campaign_id"`
	Site         string     `db:"site" json:"site"`
	Status       string     `db:"status" json:"status"`
	ProfileData  Profile    `db:"profile_data" json:"profile_data"`
	ReferenceID  *string    `db:"reference_id" json:"reference_id,omitempty"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	SubmittedAt  *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
