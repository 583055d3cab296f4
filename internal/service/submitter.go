// internal/service/submitter.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/metrics"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/repository"
)

// maxErrorLen caps stored error messages.
const maxErrorLen = 500

// SubmissionCoordinator executes one submission unit at a time against its
// site plugin under a hard deadline. It never fans out; sequential dispatch
// is what makes the executor's time-spread meaningful.
type SubmissionCoordinator struct {
	SubmissionRepo repository.SubmissionRepositoryInterface
	Submitters     *plugin.SubmitterRegistry
	Timeout        time.Duration
	Logger         *zap.Logger
}

type submitOutcome struct {
	result plugin.SubmissionResult
	err    error
}

// SubmitSingle processes one pending unit to a terminal state and keeps the
// owning campaign's counters consistent with that outcome. Returns an error
// only for store failures; a submission's own failure is a recorded outcome,
// not an error.
func (c *SubmissionCoordinator) SubmitSingle(ctx context.Context, submissionID int) error {
	sub, err := c.SubmissionRepo.GetByID(submissionID)
	if err != nil {
		return err
	}
	if sub.Status != model.SubmissionStatusPending {
		return nil
	}

	submitter := c.Submitters.Get(sub.Site)
	if submitter == nil {
		// skipped, but counted as a failure so it stays visible
		msg := "No submitter for site: " + sub.Site
		c.Logger.Warn("submission skipped",
			zap.Int("submission_id", submissionID),
			zap.String("site", sub.Site),
		)
		metrics.SubmissionsTotal.WithLabelValues(sub.Site, model.SubmissionStatusSkipped).Inc()
		return c.SubmissionRepo.FinalizeFailure(submissionID, sub.CampaignID, model.SubmissionStatusSkipped, msg)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	outcomeCh := make(chan submitOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcomeCh <- submitOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		result, err := submitter.Execute(timeoutCtx, sub.ProfileData)
		outcomeCh <- submitOutcome{result: result, err: err}
	}()

	var outcome submitOutcome
	select {
	case <-timeoutCtx.Done():
		c.Logger.Warn("submission timed out",
			zap.Int("submission_id", submissionID),
			zap.String("site", sub.Site),
		)
		metrics.SubmissionsTotal.WithLabelValues(sub.Site, model.SubmissionStatusFailed).Inc()
		msg := fmt.Sprintf("Submission timed out after %ds", int(c.Timeout.Seconds()))
		return c.SubmissionRepo.FinalizeFailure(submissionID, sub.CampaignID, model.SubmissionStatusFailed, msg)
	case outcome = <-outcomeCh:
	}

	if outcome.err != nil {
		c.Logger.Warn("submission failed",
			zap.Int("submission_id", submissionID),
			zap.String("site", sub.Site),
			zap.Error(outcome.err),
		)
		metrics.SubmissionsTotal.WithLabelValues(sub.Site, model.SubmissionStatusFailed).Inc()
		return c.SubmissionRepo.FinalizeFailure(submissionID, sub.CampaignID, model.SubmissionStatusFailed, truncate(outcome.err.Error()))
	}

	if !outcome.result.Success {
		msg := outcome.result.Error
		if msg == "" {
			msg = "Unknown error"
		}
		metrics.SubmissionsTotal.WithLabelValues(sub.Site, model.SubmissionStatusFailed).Inc()
		return c.SubmissionRepo.FinalizeFailure(submissionID, sub.CampaignID, model.SubmissionStatusFailed, truncate(msg))
	}

	submittedAt := time.Now().UTC()
	if outcome.result.SubmittedAt != nil {
		submittedAt = *outcome.result.SubmittedAt
	}
	var refID *string
	if outcome.result.ReferenceID != "" {
		refID = &outcome.result.ReferenceID
	}

	metrics.SubmissionsTotal.WithLabelValues(sub.Site, model.SubmissionStatusSubmitted).Inc()
	return c.SubmissionRepo.FinalizeSuccess(submissionID, sub.CampaignID, refID, submittedAt)
}

func truncate(s string) string {
	if len(s) > maxErrorLen {
		return s[:maxErrorLen]
	}
	return s
}
