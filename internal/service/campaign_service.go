// internal/service/campaign_service.go
package service

import (
	"go.uber.org/zap"

	appErrors "github.com/nfields/obscura-backend/internal/errors"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/repository"
)

// allowedTransitions is the campaign status state machine. Anything not in
// this table is rejected with an ErrInvalidTransition naming the pair.
var allowedTransitions = map[string][]string{
	model.CampaignStatusDraft:     {model.CampaignStatusScheduled, model.CampaignStatusRunning},
	model.CampaignStatusScheduled: {model.CampaignStatusRunning, model.CampaignStatusPaused, model.CampaignStatusDraft},
	model.CampaignStatusRunning:   {model.CampaignStatusPaused, model.CampaignStatusCompleted, model.CampaignStatusFailed},
	model.CampaignStatusPaused:    {model.CampaignStatusRunning, model.CampaignStatusDraft},
	model.CampaignStatusCompleted: {model.CampaignStatusDraft},
	model.CampaignStatusFailed:    {model.CampaignStatusDraft},
}

// ValidateTransition checks a from->to pair against the allowed table.
func ValidateTransition(from, to string) error {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return appErrors.NewInvalidTransition(from, to)
}

type CampaignService struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	SubmissionRepo repository.SubmissionRepositoryInterface

	MaxCampaignsPerUser       int
	MaxSubmissionsPerCampaign int

	Logger *zap.Logger
}

// CreateCampaignInput carries the caller-supplied campaign fields.
type CreateCampaignInput struct {
	Name            string                 `json:"name"`
	Description     *string                `json:"description"`
	TargetFirstName *string                `json:"target_first_name"`
	TargetLastName  *string                `json:"target_last_name"`
	TargetCity      *string                `json:"target_city"`
	TargetState     *string                `json:"target_state"`
	TargetAge       *int                   `json:"target_age"`
	TargetSites     []string               `json:"target_sites"`
	TargetCount     int                    `json:"target_count"`
	ProfileTemplate *model.ProfileTemplate `json:"profile_template"`
}

func (s *CampaignService) CreateCampaign(userID int, in CreateCampaignInput) (*model.Campaign, error) {
	count, err := s.CampaignRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	if count >= s.MaxCampaignsPerUser {
		return nil, appErrors.NewLimitExceeded("campaign", s.MaxCampaignsPerUser)
	}

	targetCount := in.TargetCount
	if targetCount <= 0 {
		targetCount = 10
	}
	if targetCount > s.MaxSubmissionsPerCampaign {
		targetCount = s.MaxSubmissionsPerCampaign
	}

	c := &model.Campaign{
		UserID:          userID,
		Name:            in.Name,
		Description:     in.Description,
		Status:          model.CampaignStatusDraft,
		TargetFirstName: in.TargetFirstName,
		TargetLastName:  in.TargetLastName,
		TargetCity:      in.TargetCity,
		TargetState:     in.TargetState,
		TargetAge:       in.TargetAge,
		TargetSites:     in.TargetSites,
		TargetCount:     targetCount,
		ProfileTemplate: in.ProfileTemplate,
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}

	s.Logger.Info("created campaign", zap.Int("campaign_id", c.ID), zap.Int("user_id", userID))
	return c, nil
}

// GetCampaign fetches a campaign scoped to its owner.
func (s *CampaignService) GetCampaign(campaignID, userID int) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}
	return c, nil
}

func (s *CampaignService) ListCampaigns(userID, page, pageSize int, status string) ([]*model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	campaigns, total, err := s.CampaignRepo.ListByUser(userID, offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}
	return campaigns, pagination, nil
}

// UpdateCampaignInput carries optional field updates; nil means "leave as is".
type UpdateCampaignInput struct {
	Name            *string                `json:"name"`
	Description     *string                `json:"description"`
	Status          *string                `json:"status"`
	TargetFirstName *string                `json:"target_first_name"`
	TargetLastName  *string                `json:"target_last_name"`
	TargetCity      *string                `json:"target_city"`
	TargetState     *string                `json:"target_state"`
	TargetAge       *int                   `json:"target_age"`
	TargetSites     []string               `json:"target_sites"`
	TargetCount     *int                   `json:"target_count"`
	ProfileTemplate *model.ProfileTemplate `json:"profile_template"`
}

// UpdateCampaign applies field updates; a status change must pass the
// transition table or the whole update is rejected with no mutation.
func (s *CampaignService) UpdateCampaign(campaignID, userID int, in UpdateCampaignInput) (*model.Campaign, error) {
	c, err := s.GetCampaign(campaignID, userID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if err := ValidateTransition(c.Status, *in.Status); err != nil {
			return nil, err
		}
		c.Status = *in.Status
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.TargetFirstName != nil {
		c.TargetFirstName = in.TargetFirstName
	}
	if in.TargetLastName != nil {
		c.TargetLastName = in.TargetLastName
	}
	if in.TargetCity != nil {
		c.TargetCity = in.TargetCity
	}
	if in.TargetState != nil {
		c.TargetState = in.TargetState
	}
	if in.TargetAge != nil {
		c.TargetAge = in.TargetAge
	}
	if in.TargetSites != nil {
		c.TargetSites = in.TargetSites
	}
	if in.TargetCount != nil {
		tc := *in.TargetCount
		if tc > s.MaxSubmissionsPerCampaign {
			tc = s.MaxSubmissionsPerCampaign
		}
		c.TargetCount = tc
	}
	if in.ProfileTemplate != nil {
		c.ProfileTemplate = in.ProfileTemplate
	}

	if err := s.CampaignRepo.Update(c); err != nil {
		return nil, err
	}

	s.Logger.Info("updated campaign", zap.Int("campaign_id", campaignID))
	return c, nil
}

func (s *CampaignService) DeleteCampaign(campaignID, userID int) error {
	if _, err := s.GetCampaign(campaignID, userID); err != nil {
		return err
	}
	if err := s.CampaignRepo.Delete(campaignID); err != nil {
		return err
	}
	s.Logger.Info("deleted campaign", zap.Int("campaign_id", campaignID))
	return nil
}

// SubmissionStats returns the per-status unit counts for one campaign.
func (s *CampaignService) SubmissionStats(campaignID int) (map[string]int, error) {
	return s.SubmissionRepo.CountByStatus(campaignID)
}

// UserStats aggregates campaign and submission counts across all of a user's
// campaigns.
func (s *CampaignService) UserStats(userID int) (map[string]interface{}, error) {
	campaigns, err := s.CampaignRepo.ListAllByUser(userID)
	if err != nil {
		return nil, err
	}

	active := 0
	completed := 0
	failed := 0
	for _, c := range campaigns {
		if c.Status == model.CampaignStatusRunning || c.Status == model.CampaignStatusScheduled {
			active++
		}
		completed += c.SubmissionsCompleted
		failed += c.SubmissionsFailed
	}

	total := completed + failed
	successRate := 0.0
	if total > 0 {
		successRate = float64(completed) / float64(total) * 100
	}

	return map[string]interface{}{
		"total_campaigns":    len(campaigns),
		"active_campaigns":   active,
		"total_submissions":  completed,
		"failed_submissions": failed,
		"success_rate":       roundOne(successRate),
	}, nil
}

func roundOne(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
