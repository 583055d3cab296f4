// internal/model/lookup_result.go
package model

import (
	"encoding/json"
	"time"
)

// LookupResult is a persisted search across data broker sources.
type LookupResult struct {
	ID     int  `db:"id" json:"id"`
	UserID *int `db:"user_id" json:"user_id,omitempty"`

	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	City      *string `db:"city" json:"city,omitempty"`
	State     *string `db:"state" json:"state,omitempty"`
	Age       *int    `db:"age" json:"age,omitempty"`

	SourcesSearched   int             `db:"sources_searched" json:"sources_searched"`
	SourcesSuccessful int             `db:"sources_successful" json:"sources_successful"`
	TotalRecordsFound int             `db:"total_records_found" json:"total_records_found"`
	RawResults        json.RawMessage `db:"raw_results" json:"raw_results,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	PersonRecords []PersonRecord `db:"-" json:"person_records,omitempty"`
}

// PersonRecord is one person hit returned by a single source during a lookup.
type PersonRecord struct {
	ID             int    `db:"id" json:"id"`
	LookupResultID int    `db:"lookup_result_id" json:"lookup_result_id"`
	Source         string `db:"source" json:"source"`

	Name     *string `db:"name" json:"name,omitempty"`
	Age      *int    `db:"age" json:"age,omitempty"`
	Location *string `db:"location" json:"location,omitempty"`

	Addresses    []string `db:"addresses" json:"addresses"`
	PhoneNumbers []string `db:"phone_numbers" json:"phone_numbers"`
	Emails       []string `db:"emails" json:"emails"`
	Relatives    []string `db:"relatives" json:"relatives"`

	ProfileURL *string   `db:"profile_url" json:"profile_url,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
