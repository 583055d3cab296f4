// internal/model/snapshot.go
package model

import (
	"encoding/json"
	"time"
)

// Snapshot types. The first "baseline" and the most recent "check" for a
// campaign define its accuracy trend.
const (
	SnapshotTypeBaseline = "baseline"
	SnapshotTypeCheck    = "check"
)

// Snapshot is an immutable point-in-time record of what the lookup coordinator
// found for a campaign's target identity, plus the computed accuracy score.
type Snapshot struct {
	ID         int       `db:"id" json:"id"`
	CampaignID int       `db:"campaign_id" json:"campaign_id"`
	Type       string    `db:"snapshot_type" json:"snapshot_type"`
	TakenAt    time.Time `db:"taken_at" json:"taken_at"`

	SourcesChecked int             `db:"sources_checked" json:"sources_checked"`
	RecordsFound   int             `db:"records_found" json:"records_found"`
	RawResults     json.RawMessage `db:"raw_results" json:"raw_results,omitempty"`

	AccuracyScore      *float64 `db:"accuracy_score" json:"accuracy_score"`
	DataPointsTotal    int      `db:"data_points_total" json:"data_points_total"`
	DataPointsAccurate int      `db:"data_points_accurate" json:"data_points_accurate"`
}
