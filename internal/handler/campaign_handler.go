// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/nfields/obscura-backend/internal/errors"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/queue"
	"github.com/nfields/obscura-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign detail and snapshot
// HTTP handlers.
type CampaignHandler struct {
	Service   *service.CampaignService
	Snapshots *service.SnapshotService
	Queue     queue.Queue
}

func NewCampaignHandler(svc *service.CampaignService, snapshots *service.SnapshotService, q queue.Queue) *CampaignHandler {
	return &CampaignHandler{
		Service:   svc,
		Snapshots: snapshots,
		Queue:     q,
	}
}

func userID(r *http.Request) int {
	id, err := strconv.Atoi(r.Header.Get("X-User-ID"))
	if err != nil || id < 1 {
		return 1
	}
	return id
}

func campaignID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

// GetCampaignHandler returns the campaign plus its per-status submission
// counts.
func (h *CampaignHandler) GetCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Service.GetCampaign(campaignID(r), userID(r))
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch campaign: "+err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := h.Service.SubmissionStats(campaign.ID)
	if err != nil {
		http.Error(w, "failed to fetch submission stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"campaign":         campaign,
		"submission_stats": stats,
	})
}

// TakeBaselineHandler records the campaign's pre-poisoning exposure.
func (h *CampaignHandler) TakeBaselineHandler(w http.ResponseWriter, r *http.Request) {
	h.takeSnapshot(w, r, model.SnapshotTypeBaseline)
}

// TakeCheckHandler records a post-poisoning accuracy check.
func (h *CampaignHandler) TakeCheckHandler(w http.ResponseWriter, r *http.Request) {
	h.takeSnapshot(w, r, model.SnapshotTypeCheck)
}

// takeSnapshot runs synchronously by default; ?async=1 hands the job to the
// queue and returns its id, since a full source sweep can take a while.
func (h *CampaignHandler) takeSnapshot(w http.ResponseWriter, r *http.Request, snapshotType string) {
	campaign, err := h.Service.GetCampaign(campaignID(r), userID(r))
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("async") == "1" {
		jobID, err := queue.PublishSnapshotJob(h.Queue, campaign.ID, snapshotType)
		if err != nil {
			http.Error(w, "failed to enqueue snapshot job: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"job_id": jobID,
			"status": "queued",
		})
		return
	}

	snapshot, err := h.Snapshots.TakeSnapshot(r.Context(), campaign.ID, snapshotType)
	if err != nil {
		if errors.Is(err, service.ErrTargetIdentityRequired) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to take snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(snapshot)
}

// ListSnapshotsHandler returns every snapshot for the campaign, newest first.
func (h *CampaignHandler) ListSnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Service.GetCampaign(campaignID(r), userID(r))
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snapshots, err := h.Snapshots.ListSnapshots(campaign.ID)
	if err != nil {
		http.Error(w, "failed to list snapshots: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"snapshots": snapshots})
}

// GetSnapshotHandler returns one snapshot, scoped to its campaign.
func (h *CampaignHandler) GetSnapshotHandler(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Service.GetCampaign(campaignID(r), userID(r))
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snapshotID, _ := strconv.Atoi(chi.URLParam(r, "snapshotID"))
	snapshot, err := h.Snapshots.GetSnapshot(campaign.ID, snapshotID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// AccuracyTrendHandler reports first-baseline vs latest-check accuracy.
func (h *CampaignHandler) AccuracyTrendHandler(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.Service.GetCampaign(campaignID(r), userID(r))
	if err != nil {
		var notFound *appErrors.ErrCampaignNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	trend, err := h.Snapshots.Trend(campaign.ID)
	if err != nil {
		http.Error(w, "failed to compute trend: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trend)
}
