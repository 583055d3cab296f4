package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	appErrors "github.com/nfields/obscura-backend/internal/errors"
	"github.com/nfields/obscura-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id int) (*model.Campaign, error)
	ListByUser(userID, offset, limit int, status string) ([]*model.Campaign, int, error)
	Update(c *model.Campaign) error
	UpdateStatus(campaignID int, status string) error
	SetLastExecution(campaignID int, t time.Time) error
	CountByUser(userID int) (int, error)
	Delete(id int) error
	ListAllByUser(userID int) ([]*model.Campaign, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, user_id, name, description, status,
		target_first_name, target_last_name, target_city, target_state, target_age,
		target_sites, target_count, profile_template,
		submissions_completed, submissions_failed, last_execution, next_execution,
		created_at, updated_at`

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if c.Status == "" {
		c.Status = model.CampaignStatusDraft
	}

	sites, err := json.Marshal(c.TargetSites)
	if err != nil {
		return err
	}
	var template []byte
	if c.ProfileTemplate != nil {
		if template, err = json.Marshal(c.ProfileTemplate); err != nil {
			return err
		}
	}

	query := `
        INSERT INTO campaigns (user_id, name, description, status,
            target_first_name, target_last_name, target_city, target_state, target_age,
            target_sites, target_count, profile_template, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id
    `
	return r.DB.QueryRow(query,
		c.UserID, c.Name, c.Description, c.Status,
		c.TargetFirstName, c.TargetLastName, c.TargetCity, c.TargetState, c.TargetAge,
		sites, c.TargetCount, nullableJSON(template), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListByUser(userID, offset, limit int, status string) ([]*model.Campaign, int, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id=$1`
	args := []interface{}{userID}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY updated_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE user_id=$1`
	countArgs := []interface{}{userID}
	if status != "" {
		countQuery += " AND status=$2"
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	sites, err := json.Marshal(c.TargetSites)
	if err != nil {
		return err
	}
	var template []byte
	if c.ProfileTemplate != nil {
		if template, err = json.Marshal(c.ProfileTemplate); err != nil {
			return err
		}
	}

	query := `
        UPDATE campaigns
        SET name=$1, description=$2, status=$3,
            target_first_name=$4, target_last_name=$5, target_city=$6,
            target_state=$7, target_age=$8,
            target_sites=$9, target_count=$10, profile_template=$11,
            next_execution=$12, updated_at=NOW()
        WHERE id=$13
    `
	_, err = r.DB.Exec(query,
		c.Name, c.Description, c.Status,
		c.TargetFirstName, c.TargetLastName, c.TargetCity, c.TargetState, c.TargetAge,
		sites, c.TargetCount, nullableJSON(template), c.NextExecution, c.ID,
	)
	return err
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, status, campaignID)
	return err
}

func (r *CampaignRepository) SetLastExecution(campaignID int, t time.Time) error {
	query := `UPDATE campaigns SET last_execution=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, t, campaignID)
	return err
}

func (r *CampaignRepository) CountByUser(userID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns WHERE user_id=$1`, userID).Scan(&count)
	return count, err
}

func (r *CampaignRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1`, id)
	return err
}

// ListAllByUser is used by the aggregate stats endpoint; no pagination.
func (r *CampaignRepository) ListAllByUser(userID int) ([]*model.Campaign, error) {
	rows, err := r.DB.Query(`SELECT `+campaignColumns+` FROM campaigns WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var sites, template []byte
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.Status,
		&c.TargetFirstName, &c.TargetLastName, &c.TargetCity, &c.TargetState, &c.TargetAge,
		&sites, &c.TargetCount, &template,
		&c.SubmissionsCompleted, &c.SubmissionsFailed, &c.LastExecution, &c.NextExecution,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(sites) > 0 {
		if err := json.Unmarshal(sites, &c.TargetSites); err != nil {
			return nil, err
		}
	}
	if len(template) > 0 {
		c.ProfileTemplate = &model.ProfileTemplate{}
		if err := json.Unmarshal(template, c.ProfileTemplate); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// nullableJSON maps an empty marshal result to SQL NULL.
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
