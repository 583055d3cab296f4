// internal/model/campaign.go
package model

import "time"

// Campaign statuses. Transitions between them are validated by the campaign service.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusRunning   = "running"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
)

// Campaign is a batch effort pushing poisoned profiles for one target identity
// across one or more upstream sites.
type Campaign struct {
	ID          int     `db:"id" json:"id"`
	UserID      int     `db:"user_id" json:"user_id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	Status      string  `db:"status" json:"status"`

	// Target identity: the real person whose broker records we are poisoning.
	TargetFirstName *string `db:"target_first_name" json:"target_first_name,omitempty"`
	TargetLastName  *string `db:"target_last_name" json:"target_last_name,omitempty"`
	TargetCity      *string `db:"target_city" json:"target_city,omitempty"`
	TargetState     *string `db:"target_state" json:"target_state,omitempty"`
	TargetAge       *int    `db:"target_age" json:"target_age,omitempty"`

	TargetSites     []string         `db:"target_sites" json:"target_sites"`
	TargetCount     int              `db:"target_count" json:"target_count"`
	ProfileTemplate *ProfileTemplate `db:"profile_template" json:"profile_template,omitempty"`

	SubmissionsCompleted int        `db:"submissions_completed" json:"submissions_completed"`
	SubmissionsFailed    int        `db:"submissions_failed" json:"submissions_failed"`
	LastExecution        *time.Time `db:"last_execution" json:"last_execution,omitempty"`
	NextExecution        *time.Time `db:"next_execution" json:"next_execution,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasTargetName reports whether both target name parts are set, which is what
// switches the executor into poisoning mode.
func (c *Campaign) HasTargetName() bool {
	return c.TargetFirstName != nil && *c.TargetFirstName != "" &&
		c.TargetLastName != nil && *c.TargetLastName != ""
}
