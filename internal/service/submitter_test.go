package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/service"
)

func newCoordinatorFixture(timeout time.Duration, subs ...plugin.Submitter) (*service.SubmissionCoordinator, *memCampaignRepo, *memSubmissionRepo) {
	campaigns := newMemCampaignRepo()
	submissions := newMemSubmissionRepo(campaigns)

	registry := plugin.NewSubmitterRegistry()
	for _, s := range subs {
		registry.Register(s)
	}

	return &service.SubmissionCoordinator{
		SubmissionRepo: submissions,
		Submitters:     registry,
		Timeout:        timeout,
		Logger:         zap.NewNop(),
	}, campaigns, submissions
}

func pendingUnit(t *testing.T, campaigns *memCampaignRepo, submissions *memSubmissionRepo, site string) *model.Submission {
	t.Helper()
	c := &model.Campaign{UserID: 1, Name: "test", Status: model.CampaignStatusRunning}
	require.NoError(t, campaigns.Create(c))

	unit := &model.Submission{CampaignID: c.ID, Site: site, Status: model.SubmissionStatusPending}
	require.NoError(t, submissions.BulkCreate([]*model.Submission{unit}))
	return unit
}

func TestSubmitSingleSuccess(t *testing.T) {
	coordinator, campaigns, submissions := newCoordinatorFixture(time.Second, &stubSubmitter{name: "site-a"})
	unit := pendingUnit(t, campaigns, submissions, "site-a")

	require.NoError(t, coordinator.SubmitSingle(context.Background(), unit.ID))

	got, err := submissions.GetByID(unit.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusSubmitted, got.Status)
	require.NotNil(t, got.ReferenceID)
	assert.Equal(t, "ref-1", *got.ReferenceID)
	assert.NotNil(t, got.SubmittedAt)

	c, _ := campaigns.GetByID(unit.CampaignID)
	assert.Equal(t, 1, c.SubmissionsCompleted)
	assert.Zero(t, c.SubmissionsFailed)
}

func TestSubmitSingleSkipsWhenNoPluginRegistered(t *testing.T) {
	coordinator, campaigns, submissions := newCoordinatorFixture(time.Second)
	unit := pendingUnit(t, campaigns, submissions, "no-such-site")

	require.NoError(t, coordinator.SubmitSingle(context.Background(), unit.ID))

	got, _ := submissions.GetByID(unit.ID)
	assert.Equal(t, model.SubmissionStatusSkipped, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "No submitter for site: no-such-site", *got.ErrorMessage)

	// skipped still counts as a failure on the campaign
	c, _ := campaigns.GetByID(unit.CampaignID)
	assert.Equal(t, 1, c.SubmissionsFailed)
}

func TestSubmitSingleTimesOut(t *testing.T) {
	slow := &stubSubmitter{name: "site-a", delay: time.Second}
	coordinator, campaigns, submissions := newCoordinatorFixture(30*time.Millisecond, slow)
	unit := pendingUnit(t, campaigns, submissions, "site-a")

	require.NoError(t, coordinator.SubmitSingle(context.Background(), unit.ID))

	got, _ := submissions.GetByID(unit.ID)
	assert.Equal(t, model.SubmissionStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "Submission timed out after 0s", *got.ErrorMessage)

	c, _ := campaigns.GetByID(unit.CampaignID)
	assert.Equal(t, 1, c.SubmissionsFailed)
}

func TestSubmitSingleRecordsBusinessFailure(t *testing.T) {
	failing := &stubSubmitter{name: "site-a", failMsg: "profile rejected: duplicate email"}
	coordinator, campaigns, submissions := newCoordinatorFixture(time.Second, failing)
	unit := pendingUnit(t, campaigns, submissions, "site-a")

	require.NoError(t, coordinator.SubmitSingle(context.Background(), unit.ID))

	got, _ := submissions.GetByID(unit.ID)
	assert.Equal(t, model.SubmissionStatusFailed, got.Status)
	assert.Equal(t, "profile rejected: duplicate email", *got.ErrorMessage)
}

func TestSubmitSingleTruncatesLongErrors(t *testing.T) {
	noisy := &stubSubmitter{name: "site-a", err: errors.New(strings.Repeat("x", 2000))}
	coordinator, campaigns, submissions := newCoordinatorFixture(time.Second, noisy)
	unit := pendingUnit(t, campaigns, submissions, "site-a")

	require.NoError(t, coordinator.SubmitSingle(context.Background(), unit.ID))

	got, _ := submissions.GetByID(unit.ID)
	assert.Equal(t, model.SubmissionStatusFailed, got.Status)
	assert.Len(t, *got.ErrorMessage, 500)
}

func TestSubmitSingleIgnoresNonPendingUnits(t *testing.T) {
	sub := &stubSubmitter{name: "site-a"}
	coordinator, campaigns, submissions := newCoordinatorFixture(time.Second, sub)

	c := &model.Campaign{UserID: 1, Name: "test", Status: model.CampaignStatusRunning}
	require.NoError(t, campaigns.Create(c))
	unit := &model.Submission{CampaignID: c.ID, Site: "site-a", Status: model.SubmissionStatusSubmitted}
	require.NoError(t, submissions.BulkCreate([]*model.Submission{unit}))

	require.NoError(t, coordinator.SubmitSingle(context.Background(), unit.ID))
	assert.Zero(t, sub.callCount(), "terminal units are never re-dispatched")
}

func TestSubmitSingleSurvivesPluginPanic(t *testing.T) {
	coordinator, campaigns, submissions := newCoordinatorFixture(time.Second, &panicSubmitter{})
	unit := pendingUnit(t, campaigns, submissions, "boom")

	require.NoError(t, coordinator.SubmitSingle(context.Background(), unit.ID))

	got, _ := submissions.GetByID(unit.ID)
	assert.Equal(t, model.SubmissionStatusFailed, got.Status)
	assert.Contains(t, *got.ErrorMessage, "panic")
}

type panicSubmitter struct{}

func (p *panicSubmitter) Name() string { return "boom" }

func (p *panicSubmitter) Execute(context.Context, model.Profile) (plugin.SubmissionResult, error) {
	panic("submitter exploded")
}
