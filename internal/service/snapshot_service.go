// internal/service/snapshot_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/metrics"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/repository"
)

// ErrTargetIdentityRequired rejects a snapshot for a campaign with no target
// name to search for.
var ErrTargetIdentityRequired = errors.New("campaign must have target first and last name set")

// SnapshotService runs the lookup coordinator against a campaign's target,
// scores the results and persists the immutable snapshot.
type SnapshotService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	SnapshotRepo repository.SnapshotRepositoryInterface
	Lookup       *LookupService
	Logger       *zap.Logger
}

// AccuracyTrend compares the first baseline against the most recent check.
type AccuracyTrend struct {
	Baseline       *model.Snapshot `json:"baseline"`
	LatestCheck    *model.Snapshot `json:"latest_check"`
	AccuracyChange *float64        `json:"accuracy_change"`
	ChecksCount    int             `json:"checks_count"`
}

// TakeSnapshot searches all enabled sources for the campaign's target
// identity, scores what came back against the target's real info, and stores
// the result as a baseline or check.
func (s *SnapshotService) TakeSnapshot(ctx context.Context, campaignID int, snapshotType string) (*model.Snapshot, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.HasTargetName() {
		return nil, ErrTargetIdentityRequired
	}

	query := plugin.SearchQuery{
		FirstName: *campaign.TargetFirstName,
		LastName:  *campaign.TargetLastName,
		City:      campaign.TargetCity,
		State:     campaign.TargetState,
		Age:       campaign.TargetAge,
	}
	resp := s.Lookup.SearchPerson(ctx, query, nil)

	real := RealInfo{
		FirstName: *campaign.TargetFirstName,
		LastName:  *campaign.TargetLastName,
		Age:       campaign.TargetAge,
	}
	if campaign.TargetCity != nil {
		real.City = *campaign.TargetCity
	}
	if campaign.TargetState != nil {
		real.State = *campaign.TargetState
	}

	accuracy := CalculateAccuracy(resp.Results, real)

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	score := accuracy.AccuracyScore
	snapshot := &model.Snapshot{
		CampaignID:         campaignID,
		Type:               snapshotType,
		SourcesChecked:     resp.SourcesSearched,
		RecordsFound:       resp.TotalRecordsFound,
		RawResults:         raw,
		AccuracyScore:      &score,
		DataPointsTotal:    accuracy.DataPointsTotal,
		DataPointsAccurate: accuracy.DataPointsAccurate,
	}

	if err := s.SnapshotRepo.Create(snapshot); err != nil {
		return nil, err
	}

	metrics.SnapshotsTotal.WithLabelValues(snapshotType).Inc()
	s.Logger.Info("took snapshot",
		zap.Int("campaign_id", campaignID),
		zap.String("type", snapshotType),
		zap.Float64("accuracy_score", score),
		zap.Int("records_found", resp.TotalRecordsFound),
	)
	return snapshot, nil
}

func (s *SnapshotService) ListSnapshots(campaignID int) ([]*model.Snapshot, error) {
	return s.SnapshotRepo.ListByCampaign(campaignID)
}

func (s *SnapshotService) GetSnapshot(campaignID, snapshotID int) (*model.Snapshot, error) {
	return s.SnapshotRepo.GetByID(campaignID, snapshotID)
}

// Trend returns the campaign's accuracy trajectory: first baseline, latest
// check, and the score delta between them when both exist.
func (s *SnapshotService) Trend(campaignID int) (*AccuracyTrend, error) {
	baseline, err := s.SnapshotRepo.FirstBaseline(campaignID)
	if err != nil {
		return nil, err
	}
	latestCheck, err := s.SnapshotRepo.LatestCheck(campaignID)
	if err != nil {
		return nil, err
	}
	checksCount, err := s.SnapshotRepo.CountChecks(campaignID)
	if err != nil {
		return nil, err
	}

	trend := &AccuracyTrend{
		Baseline:    baseline,
		LatestCheck: latestCheck,
		ChecksCount: checksCount,
	}

	if baseline != nil && latestCheck != nil &&
		baseline.AccuracyScore != nil && latestCheck.AccuracyScore != nil {
		change := math.Round((*latestCheck.AccuracyScore-*baseline.AccuracyScore)*10) / 10
		trend.AccuracyChange = &change
	}
	return trend, nil
}
