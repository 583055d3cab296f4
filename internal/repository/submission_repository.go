package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	appErrors "github.com/nfields/obscura-backend/internal/errors"
	"github.com/nfields/obscura-backend/internal/model"
)

type SubmissionRepositoryInterface interface {
	BulkCreate(subs []*model.Submission) error
	GetByID(id int) (*model.Submission, error)
	ListPending(campaignID int) ([]*model.Submission, error)
	ListByCampaign(campaignID, offset, limit int, status string) ([]*model.Submission, int, error)
	CountByCampaign(campaignID int) (int, error)
	CountByStatus(campaignID int) (map[string]int, error)
	FinalizeSuccess(submissionID, campaignID int, referenceID *string, submittedAt time.Time) error
	FinalizeFailure(submissionID, campaignID int, status, errorMessage string) error
}

type SubmissionRepository struct {
	DB *sql.DB
}

const submissionColumns = `id, campaign_id, site, status, profile_data,
		reference_id, error_message, submitted_at, created_at, updated_at`

// BulkCreate inserts the full unit-of-work set for a campaign run in one
// transaction so a crash can never leave a partial cross product behind.
func (r *SubmissionRepository) BulkCreate(subs []*model.Submission) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO submissions (campaign_id, site, status, profile_data, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	for _, sub := range subs {
		if sub.Status == "" {
			sub.Status = model.SubmissionStatusPending
		}
		profile, err := json.Marshal(sub.ProfileData)
		if err != nil {
			return err
		}
		if err := tx.QueryRow(query, sub.CampaignID, sub.Site, sub.Status, profile).
			Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SubmissionRepository) GetByID(id int) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id=$1`
	sub, err := scanSubmission(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewSubmissionNotFound(id)
		}
		return nil, err
	}
	return sub, nil
}

// ListPending returns a campaign's pending units in creation order; this is
// exactly the set a resume picks back up.
func (r *SubmissionRepository) ListPending(campaignID int) ([]*model.Submission, error) {
	query := `SELECT ` + submissionColumns + `
              FROM submissions
              WHERE campaign_id=$1 AND status=$2
              ORDER BY id`
	rows, err := r.DB.Query(query, campaignID, model.SubmissionStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []*model.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SubmissionRepository) ListByCampaign(campaignID, offset, limit int, status string) ([]*model.Submission, int, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE campaign_id=$1`
	args := []interface{}{campaignID}
	argPos := 2

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	subs := []*model.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM submissions WHERE campaign_id=$1`
	countArgs := []interface{}{campaignID}
	if status != "" {
		countQuery += " AND status=$2"
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

func (r *SubmissionRepository) CountByCampaign(campaignID int) (int, error) {
	var count int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM submissions WHERE campaign_id=$1`, campaignID).Scan(&count)
	return count, err
}

// CountByStatus returns per-status submission counts plus a "total" key.
func (r *SubmissionRepository) CountByStatus(campaignID int) (map[string]int, error) {
	rows, err := r.DB.Query(
		`SELECT status, COUNT(*) FROM submissions WHERE campaign_id=$1 GROUP BY status`,
		campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		"total":     0,
		"pending":   0,
		"submitted": 0,
		"confirmed": 0,
		"failed":    0,
		"skipped":   0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		if _, ok := stats[status]; ok {
			stats[status] = count
		}
		stats["total"] += count
	}
	return stats, rows.Err()
}

// FinalizeSuccess writes the submitted outcome and bumps the campaign's
// completed counter in one short transaction, keeping the two consistent.
func (r *SubmissionRepository) FinalizeSuccess(submissionID, campaignID int, referenceID *string, submittedAt time.Time) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        UPDATE submissions
        SET status=$1, reference_id=$2, submitted_at=$3, updated_at=NOW()
        WHERE id=$4`,
		model.SubmissionStatusSubmitted, referenceID, submittedAt, submissionID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        UPDATE campaigns
        SET submissions_completed = submissions_completed + 1, updated_at=NOW()
        WHERE id=$1`,
		campaignID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// FinalizeFailure writes a failed or skipped outcome and bumps the failed
// counter in one transaction. Skipped units count as failures for visibility.
func (r *SubmissionRepository) FinalizeFailure(submissionID, campaignID int, status, errorMessage string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        UPDATE submissions
        SET status=$1, error_message=$2, updated_at=NOW()
        WHERE id=$3`,
		status, errorMessage, submissionID,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        UPDATE campaigns
        SET submissions_failed = submissions_failed + 1, updated_at=NOW()
        WHERE id=$1`,
		campaignID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var sub model.Submission
	var profile []byte
	err := row.Scan(
		&sub.ID, &sub.CampaignID, &sub.Site, &sub.Status, &profile,
		&sub.ReferenceID, &sub.ErrorMessage, &sub.SubmittedAt,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &sub.ProfileData); err != nil {
			return nil, err
		}
	}
	return &sub, nil
}

var _ SubmissionRepositoryInterface = (*SubmissionRepository)(nil)
