package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts finished submission units by outcome
	// (submitted, failed, skipped).
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obscura_submissions_total",
			Help: "Total submission units processed by outcome",
		},
		[]string{"site", "outcome"},
	)

	// SourceSearchesTotal counts individual source searches by outcome.
	SourceSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obscura_source_searches_total",
			Help: "Total per-source lookup searches by outcome",
		},
		[]string{"source", "outcome"},
	)

	// SnapshotsTotal counts persisted baseline/check snapshots.
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obscura_snapshots_total",
			Help: "Total accuracy snapshots taken by type",
		},
		[]string{"type"},
	)

	// CampaignRunsTotal counts executor runs by how they ended.
	CampaignRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obscura_campaign_runs_total",
			Help: "Total campaign executor runs by final state",
		},
		[]string{"result"},
	)
)
