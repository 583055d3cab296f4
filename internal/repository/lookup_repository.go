package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/nfields/obscura-backend/internal/model"
)

type LookupRepositoryInterface interface {
	CreateResult(lr *model.LookupResult, records []model.PersonRecord) error
	GetByID(id int) (*model.LookupResult, error)
	List(userID *int, offset, limit int) ([]*model.LookupResult, int, error)
}

type LookupRepository struct {
	DB *sql.DB
}

// CreateResult persists the lookup envelope plus one person_records row per
// record from each successful source, all in one transaction.
func (r *LookupRepository) CreateResult(lr *model.LookupResult, records []model.PersonRecord) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
        INSERT INTO lookup_results (user_id, first_name, last_name, city, state, age,
            sources_searched, sources_successful, total_records_found, raw_results, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
        RETURNING id, created_at`,
		lr.UserID, lr.FirstName, lr.LastName, lr.City, lr.State, lr.Age,
		lr.SourcesSearched, lr.SourcesSuccessful, lr.TotalRecordsFound,
		nullableJSON(lr.RawResults),
	).Scan(&lr.ID, &lr.CreatedAt)
	if err != nil {
		return err
	}

	for i := range records {
		rec := &records[i]
		rec.LookupResultID = lr.ID

		addresses, _ := json.Marshal(rec.Addresses)
		phones, _ := json.Marshal(rec.PhoneNumbers)
		emails, _ := json.Marshal(rec.Emails)
		relatives, _ := json.Marshal(rec.Relatives)

		err = tx.QueryRow(`
            INSERT INTO person_records (lookup_result_id, source, name, age, location,
                addresses, phone_numbers, emails, relatives, profile_url, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
            RETURNING id, created_at`,
			rec.LookupResultID, rec.Source, rec.Name, rec.Age, rec.Location,
			addresses, phones, emails, relatives, rec.ProfileURL,
		).Scan(&rec.ID, &rec.CreatedAt)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	lr.PersonRecords = records
	return nil
}

func (r *LookupRepository) GetByID(id int) (*model.LookupResult, error) {
	query := `SELECT id, user_id, first_name, last_name, city, state, age,
                     sources_searched, sources_successful, total_records_found,
                     raw_results, created_at
              FROM lookup_results WHERE id=$1`

	var lr model.LookupResult
	var raw []byte
	err := r.DB.QueryRow(query, id).Scan(
		&lr.ID, &lr.UserID, &lr.FirstName, &lr.LastName, &lr.City, &lr.State, &lr.Age,
		&lr.SourcesSearched, &lr.SourcesSuccessful, &lr.TotalRecordsFound,
		&raw, &lr.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	lr.RawResults = raw

	rows, err := r.DB.Query(`
        SELECT id, lookup_result_id, source, name, age, location,
               addresses, phone_numbers, emails, relatives, profile_url, created_at
        FROM person_records WHERE lookup_result_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.PersonRecord
		var addresses, phones, emails, relatives []byte
		if err := rows.Scan(
			&rec.ID, &rec.LookupResultID, &rec.Source, &rec.Name, &rec.Age, &rec.Location,
			&addresses, &phones, &emails, &relatives, &rec.ProfileURL, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(addresses, &rec.Addresses)
		_ = json.Unmarshal(phones, &rec.PhoneNumbers)
		_ = json.Unmarshal(emails, &rec.Emails)
		_ = json.Unmarshal(relatives, &rec.Relatives)
		lr.PersonRecords = append(lr.PersonRecords, rec)
	}
	return &lr, rows.Err()
}

func (r *LookupRepository) List(userID *int, offset, limit int) ([]*model.LookupResult, int, error) {
	query := `SELECT id, user_id, first_name, last_name, city, state, age,
                     sources_searched, sources_successful, total_records_found, created_at
              FROM lookup_results`
	countQuery := `SELECT COUNT(*) FROM lookup_results`
	args := []interface{}{}
	countArgs := []interface{}{}

	if userID != nil {
		query += ` WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		countQuery += ` WHERE user_id=$1`
		args = append(args, *userID, limit, offset)
		countArgs = append(countArgs, *userID)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []*model.LookupResult{}
	for rows.Next() {
		var lr model.LookupResult
		if err := rows.Scan(
			&lr.ID, &lr.UserID, &lr.FirstName, &lr.LastName, &lr.City, &lr.State, &lr.Age,
			&lr.SourcesSearched, &lr.SourcesSuccessful, &lr.TotalRecordsFound, &lr.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, &lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

var _ LookupRepositoryInterface = (*LookupRepository)(nil)
