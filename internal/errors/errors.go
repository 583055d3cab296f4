// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrSubmissionNotFound signals a submission unit vanished mid-run.
type ErrSubmissionNotFound struct {
	SubmissionID int
}

func (e *ErrSubmissionNotFound) Error() string {
	return fmt.Sprintf("submission with ID %d not found", e.SubmissionID)
}

func NewSubmissionNotFound(id int) error {
	return &ErrSubmissionNotFound{SubmissionID: id}
}

// ErrInvalidTransition rejects a campaign status change outside the allowed
// transition table. It names the attempted from->to pair.
type ErrInvalidTransition struct {
	From string
	To   string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("cannot transition from '%s' to '%s'", e.From, e.To)
}

func NewInvalidTransition(from, to string) error {
	return &ErrInvalidTransition{From: from, To: to}
}

// ErrLimitExceeded rejects an operation that would blow past a configured cap.
type ErrLimitExceeded struct {
	What  string
	Limit int
}

func (e *ErrLimitExceeded) Error() string {
	return fmt.Sprintf("%s limit reached (%d)", e.What, e.Limit)
}

func NewLimitExceeded(what string, limit int) error {
	return &ErrLimitExceeded{What: what, Limit: limit}
}

// ErrCampaignAlreadyRunning rejects a duplicate start/resume for a campaign
// that already owns an active executor task.
type ErrCampaignAlreadyRunning struct {
	CampaignID int
}

func (e *ErrCampaignAlreadyRunning) Error() string {
	return fmt.Sprintf("campaign %d is already running", e.CampaignID)
}

func NewCampaignAlreadyRunning(id int) error {
	return &ErrCampaignAlreadyRunning{CampaignID: id}
}
