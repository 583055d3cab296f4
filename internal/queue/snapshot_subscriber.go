package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/service"
)

// SnapshotTopic is the topic snapshot jobs are published on. The amqp worker
// declares a queue with the same name.
const SnapshotTopic = "snapshot_jobs"

// SnapshotJob asks for one baseline/check to be taken out of band.
type SnapshotJob struct {
	JobID        string `json:"job_id"`
	CampaignID   int    `json:"campaign_id"`
	SnapshotType string `json:"snapshot_type"`
}

// PublishSnapshotJob enqueues a snapshot request and returns its job id.
func PublishSnapshotJob(q Queue, campaignID int, snapshotType string) (string, error) {
	job := SnapshotJob{
		JobID:        uuid.NewString(),
		CampaignID:   campaignID,
		SnapshotType: snapshotType,
	}
	if err := q.Publish(SnapshotTopic, job); err != nil {
		return "", err
	}
	return job.JobID, nil
}

// StartSnapshotSubscriber wires the snapshot service to the queue so baseline
// and check requests run asynchronously in the server process.
func StartSnapshotSubscriber(q Queue, snapshots *service.SnapshotService, logger *zap.Logger) {
	go func() {
		err := q.Subscribe(SnapshotTopic, func(payload any) error {
			job, ok := payload.(SnapshotJob)
			if !ok {
				logger.Warn("invalid snapshot job payload", zap.Any("payload", payload))
				return nil // nothing to retry
			}

			logger.Info("processing snapshot job",
				zap.String("job_id", job.JobID),
				zap.Int("campaign_id", job.CampaignID),
				zap.String("type", job.SnapshotType),
			)

			snapshot, err := snapshots.TakeSnapshot(context.Background(), job.CampaignID, job.SnapshotType)
			if err != nil {
				return fmt.Errorf("snapshot job %s: %w", job.JobID, err)
			}

			logger.Info("snapshot job done",
				zap.String("job_id", job.JobID),
				zap.Int("snapshot_id", snapshot.ID),
			)
			return nil
		})
		if err != nil {
			logger.Error("failed to start snapshot subscriber", zap.Error(err))
		}
	}()
}
