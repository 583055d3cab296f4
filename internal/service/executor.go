// internal/service/executor.go
package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/nfields/obscura-backend/internal/errors"
	"github.com/nfields/obscura-backend/internal/generator"
	"github.com/nfields/obscura-backend/internal/metrics"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/repository"
)

// errNoTargetSites aborts a fresh run before any units are created.
var errNoTargetSites = errors.New("campaign has no target sites")

// campaignTask is the handle for one running campaign goroutine.
type campaignTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// CampaignExecutor owns campaign runs. One goroutine per running campaign,
// tracked in an in-memory registry keyed by campaign id; the registry entry
// is the single-writer-per-campaign invariant that keeps the counters safe.
type CampaignExecutor struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	SubmissionRepo repository.SubmissionRepositoryInterface
	Coordinator    *SubmissionCoordinator
	Generator      *generator.Generator

	// Window is the wall-clock span one run's submissions are spread across.
	Window time.Duration

	Logger *zap.Logger

	mu    sync.Mutex
	tasks map[int]*campaignTask
}

func NewCampaignExecutor(
	campaignRepo repository.CampaignRepositoryInterface,
	submissionRepo repository.SubmissionRepositoryInterface,
	coordinator *SubmissionCoordinator,
	gen *generator.Generator,
	window time.Duration,
	logger *zap.Logger,
) *CampaignExecutor {
	return &CampaignExecutor{
		CampaignRepo:   campaignRepo,
		SubmissionRepo: submissionRepo,
		Coordinator:    coordinator,
		Generator:      gen,
		Window:         window,
		Logger:         logger,
		tasks:          make(map[int]*campaignTask),
	}
}

// StartCampaign kicks off a fresh run as a background task. The campaign's
// status must already be "running". Rejects a campaign that already owns a
// task.
func (e *CampaignExecutor) StartCampaign(campaignID int) error {
	return e.spawn(campaignID, true)
}

// ResumeCampaign picks the campaign's remaining pending units back up.
func (e *CampaignExecutor) ResumeCampaign(campaignID int) error {
	return e.spawn(campaignID, false)
}

func (e *CampaignExecutor) spawn(campaignID int, fresh bool) error {
	e.mu.Lock()
	if _, exists := e.tasks[campaignID]; exists {
		e.mu.Unlock()
		return appErrors.NewCampaignAlreadyRunning(campaignID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &campaignTask{cancel: cancel, done: make(chan struct{})}
	e.tasks[campaignID] = task
	e.mu.Unlock()

	go e.run(ctx, campaignID, fresh, task)

	e.Logger.Info("started campaign task",
		zap.Int("campaign_id", campaignID),
		zap.Bool("fresh", fresh),
	)
	return nil
}

// PauseCampaign cancels the campaign's task handle. The caller is expected to
// have written the "paused" status already; the loop's per-unit status
// re-read catches an external pause even when this cancellation loses the
// race. Returns false when no task was running.
func (e *CampaignExecutor) PauseCampaign(campaignID int) bool {
	e.mu.Lock()
	task, ok := e.tasks[campaignID]
	e.mu.Unlock()

	if !ok {
		e.Logger.Warn("no running task for campaign", zap.Int("campaign_id", campaignID))
		return false
	}
	task.cancel()
	e.Logger.Info("paused campaign", zap.Int("campaign_id", campaignID))
	return true
}

// RunningCampaigns lists campaign ids that currently own a task.
func (e *CampaignExecutor) RunningCampaigns() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int, 0, len(e.tasks))
	for id := range e.tasks {
		ids = append(ids, id)
	}
	return ids
}

// Wait blocks until the campaign's task exits. No-op when none is running.
func (e *CampaignExecutor) Wait(campaignID int) {
	e.mu.Lock()
	task, ok := e.tasks[campaignID]
	e.mu.Unlock()
	if ok {
		<-task.done
	}
}

// run is the task body. It removes itself from the registry on exit
// regardless of outcome.
func (e *CampaignExecutor) run(ctx context.Context, campaignID int, fresh bool, task *campaignTask) {
	defer func() {
		e.mu.Lock()
		delete(e.tasks, campaignID)
		e.mu.Unlock()
		close(task.done)
	}()

	var err error
	if fresh {
		err = e.executeFresh(ctx, campaignID)
	} else {
		err = e.executeResume(ctx, campaignID)
	}

	switch {
	case err == nil:
		metrics.CampaignRunsTotal.WithLabelValues("completed").Inc()
	case errors.Is(err, context.Canceled):
		e.Logger.Info("campaign task cancelled (paused)", zap.Int("campaign_id", campaignID))
		metrics.CampaignRunsTotal.WithLabelValues("paused").Inc()
	default:
		e.Logger.Error("campaign failed with unrecoverable error",
			zap.Int("campaign_id", campaignID),
			zap.Error(err),
		)
		metrics.CampaignRunsTotal.WithLabelValues("failed").Inc()
		// best effort: a failure to record the failure is logged and swallowed
		if updateErr := e.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusFailed); updateErr != nil {
			e.Logger.Error("failed to mark campaign as failed",
				zap.Int("campaign_id", campaignID),
				zap.Error(updateErr),
			)
		}
	}
}

// executeFresh expands the campaign target into submission units and walks
// them.
func (e *CampaignExecutor) executeFresh(ctx context.Context, campaignID int) error {
	campaign, err := e.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}

	if len(campaign.TargetSites) == 0 {
		e.Logger.Error("campaign has no target sites", zap.Int("campaign_id", campaignID))
		if err := e.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusFailed); err != nil {
			return err
		}
		return errNoTargetSites
	}

	var profiles []model.Profile
	if campaign.HasTargetName() {
		profiles = e.Generator.GeneratePoisoning(
			*campaign.TargetFirstName,
			*campaign.TargetLastName,
			campaign.TargetCount,
			campaign.TargetState,
			campaign.TargetAge,
		)
	} else {
		// campaigns without a target identity fall back to plain generation
		profiles = e.Generator.GenerateBatch(campaign.TargetCount, campaign.ProfileTemplate)
	}

	units := make([]*model.Submission, 0, len(profiles)*len(campaign.TargetSites))
	for i := range profiles {
		for _, site := range campaign.TargetSites {
			units = append(units, &model.Submission{
				CampaignID:  campaignID,
				Site:        site,
				Status:      model.SubmissionStatusPending,
				ProfileData: profiles[i],
			})
		}
	}

	if err := e.SubmissionRepo.BulkCreate(units); err != nil {
		return err
	}
	if err := e.CampaignRepo.SetLastExecution(campaignID, time.Now().UTC()); err != nil {
		return err
	}

	if len(units) == 0 {
		return e.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusCompleted)
	}

	return e.processUnits(ctx, campaignID, units)
}

// executeResume walks exactly the units still pending from an earlier run.
func (e *CampaignExecutor) executeResume(ctx context.Context, campaignID int) error {
	pending, err := e.SubmissionRepo.ListPending(campaignID)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		e.Logger.Info("no pending submissions, marking complete", zap.Int("campaign_id", campaignID))
		return e.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusCompleted)
	}

	return e.processUnits(ctx, campaignID, pending)
}

// processUnits is the shared per-unit loop: status re-read, dispatch, jittered
// sleep. Cancellation is only honored between units so an in-flight
// submission is never interrupted.
func (e *CampaignExecutor) processUnits(ctx context.Context, campaignID int, units []*model.Submission) error {
	delay := e.Window / time.Duration(len(units))

	for _, unit := range units {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// re-read so an external pause/cancel is observed even without
		// task cancellation
		campaign, err := e.CampaignRepo.GetByID(campaignID)
		if err != nil {
			return err
		}
		if campaign.Status != model.CampaignStatusRunning {
			e.Logger.Info("campaign no longer running, stopping",
				zap.Int("campaign_id", campaignID),
				zap.String("status", campaign.Status),
			)
			return nil
		}

		// the unit runs on its own context: pausing must not interrupt a
		// submission already in flight
		if err := e.Coordinator.SubmitSingle(context.Background(), unit.ID); err != nil {
			return err
		}

		wait := jitter(delay)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	campaign, err := e.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign.Status == model.CampaignStatusRunning {
		if err := e.CampaignRepo.UpdateStatus(campaignID, model.CampaignStatusCompleted); err != nil {
			return err
		}
		e.Logger.Info("campaign completed", zap.Int("campaign_id", campaignID))
	}
	return nil
}

// jitter spreads a delay by +/-20%, clamped at zero.
func jitter(delay time.Duration) time.Duration {
	j := time.Duration(float64(delay) * (rand.Float64()*0.4 - 0.2))
	wait := delay + j
	if wait < 0 {
		return 0
	}
	return wait
}
