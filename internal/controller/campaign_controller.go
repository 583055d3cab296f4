// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/nfields/obscura-backend/internal/errors"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Executor        *service.CampaignExecutor
}

// userID pulls the caller's id. Authentication itself lives in front of this
// service; by the time a request lands here the header is trusted.
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

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var notFound *appErrors.ErrCampaignNotFound
	var subNotFound *appErrors.ErrSubmissionNotFound
	var badTransition *appErrors.ErrInvalidTransition
	var limit *appErrors.ErrLimitExceeded
	var running *appErrors.ErrCampaignAlreadyRunning

	switch {
	case errors.As(err, &notFound), errors.As(err, &subNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &badTransition), errors.As(err, &limit),
		errors.Is(err, service.ErrTargetIdentityRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &running):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.CreateCampaignInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(userID(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(userID(r), page, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var body service.UpdateCampaignInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(campaignID(r), userID(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := c.CampaignService.DeleteCampaign(campaignID(r), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ExecuteCampaign moves the campaign to running and kicks off a fresh
// background run.
func (c *CampaignController) ExecuteCampaign(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	running := model.CampaignStatusRunning

	campaign, err := c.CampaignService.UpdateCampaign(id, userID(r), service.UpdateCampaignInput{Status: &running})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := c.Executor.StartCampaign(id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"campaign_id": id,
		"status":      campaign.Status,
		"message":     "campaign execution started",
	})
}

// PauseCampaign writes the paused status first, then cancels the task; the
// executor's per-unit status re-read backstops the race between the two.
func (c *CampaignController) PauseCampaign(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	paused := model.CampaignStatusPaused

	campaign, err := c.CampaignService.UpdateCampaign(id, userID(r), service.UpdateCampaignInput{Status: &paused})
	if err != nil {
		writeError(w, err)
		return
	}

	cancelled := c.Executor.PauseCampaign(id)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"campaign_id":    id,
		"status":         campaign.Status,
		"task_cancelled": cancelled,
	})
}

// ResumeCampaign moves the campaign back to running and re-enqueues its
// pending units.
func (c *CampaignController) ResumeCampaign(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	running := model.CampaignStatusRunning

	campaign, err := c.CampaignService.UpdateCampaign(id, userID(r), service.UpdateCampaignInput{Status: &running})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := c.Executor.ResumeCampaign(id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"campaign_id": id,
		"status":      campaign.Status,
		"message":     "campaign resumed",
	})
}

func (c *CampaignController) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)

	if _, err := c.CampaignService.GetCampaign(id, userID(r)); err != nil {
		writeError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	status := r.URL.Query().Get("status")

	subs, total, err := c.CampaignService.SubmissionRepo.ListByCampaign(id, (page-1)*pageSize, pageSize, status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": subs,
		"pagination": map[string]int{
			"page":        page,
			"page_size":   pageSize,
			"total_count": total,
			"total_pages": (total + pageSize - 1) / pageSize,
		},
	})
}

func (c *CampaignController) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.CampaignService.UserStats(userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
