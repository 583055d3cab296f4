package repository

import (
	"database/sql"

	"github.com/nfields/obscura-backend/internal/model"
)

type SnapshotRepositoryInterface interface {
	Create(s *model.Snapshot) error
	ListByCampaign(campaignID int) ([]*model.Snapshot, error)
	GetByID(campaignID, snapshotID int) (*model.Snapshot, error)
	FirstBaseline(campaignID int) (*model.Snapshot, error)
	LatestCheck(campaignID int) (*model.Snapshot, error)
	CountChecks(campaignID int) (int, error)
}

type SnapshotRepository struct {
	DB *sql.DB
}

const snapshotColumns = `id, campaign_id, snapshot_type, taken_at,
		sources_checked, records_found, raw_results,
		accuracy_score, data_points_total, data_points_accurate`

func (r *SnapshotRepository) Create(s *model.Snapshot) error {
	query := `
        INSERT INTO snapshots (campaign_id, snapshot_type, taken_at,
            sources_checked, records_found, raw_results,
            accuracy_score, data_points_total, data_points_accurate)
        VALUES ($1, $2, NOW(), $3, $4, $5, $6, $7, $8)
        RETURNING id, taken_at
    `
	return r.DB.QueryRow(query,
		s.CampaignID, s.Type,
		s.SourcesChecked, s.RecordsFound, nullableJSON(s.RawResults),
		s.AccuracyScore, s.DataPointsTotal, s.DataPointsAccurate,
	).Scan(&s.ID, &s.TakenAt)
}

func (r *SnapshotRepository) ListByCampaign(campaignID int) ([]*model.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
              FROM snapshots WHERE campaign_id=$1 ORDER BY taken_at`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []*model.Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *SnapshotRepository) GetByID(campaignID, snapshotID int) (*model.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
              FROM snapshots WHERE campaign_id=$1 AND id=$2`
	s, err := scanSnapshot(r.DB.QueryRow(query, campaignID, snapshotID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SnapshotRepository) FirstBaseline(campaignID int) (*model.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
              FROM snapshots
              WHERE campaign_id=$1 AND snapshot_type=$2
              ORDER BY taken_at LIMIT 1`
	s, err := scanSnapshot(r.DB.QueryRow(query, campaignID, model.SnapshotTypeBaseline))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SnapshotRepository) LatestCheck(campaignID int) (*model.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + `
              FROM snapshots
              WHERE campaign_id=$1 AND snapshot_type=$2
              ORDER BY taken_at DESC LIMIT 1`
	s, err := scanSnapshot(r.DB.QueryRow(query, campaignID, model.SnapshotTypeCheck))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SnapshotRepository) CountChecks(campaignID int) (int, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM snapshots WHERE campaign_id=$1 AND snapshot_type=$2`,
		campaignID, model.SnapshotTypeCheck,
	).Scan(&count)
	return count, err
}

func scanSnapshot(row rowScanner) (*model.Snapshot, error) {
	var s model.Snapshot
	var raw []byte
	err := row.Scan(
		&s.ID, &s.CampaignID, &s.Type, &s.TakenAt,
		&s.SourcesChecked, &s.RecordsFound, &raw,
		&s.AccuracyScore, &s.DataPointsTotal, &s.DataPointsAccurate,
	)
	if err != nil {
		return nil, err
	}
	s.RawResults = raw
	return &s, nil
}

var _ SnapshotRepositoryInterface = (*SnapshotRepository)(nil)
