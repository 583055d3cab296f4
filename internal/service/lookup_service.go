// internal/service/lookup_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/metrics"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/repository"
)

// LookupService fans an identity query out across source plugins and
// aggregates the per-source outcomes into one envelope.
type LookupService struct {
	Sources        *plugin.SourceRegistry
	LookupRepo     repository.LookupRepositoryInterface
	EnabledSources []string
	Logger         *zap.Logger
}

// SearchResponse is the aggregate envelope for one lookup batch.
type SearchResponse struct {
	Success           bool                  `json:"success"`
	Error             string                `json:"error,omitempty"`
	Query             plugin.SearchQuery    `json:"query"`
	SourcesSearched   int                   `json:"sources_searched"`
	SourcesSuccessful int                   `json:"sources_successful"`
	TotalRecordsFound int                   `json:"total_records_found"`
	Results           []plugin.SearchResult `json:"results"`
	Timestamp         time.Time             `json:"timestamp"`
}

// SourceInfo describes one registered source for the API.
type SourceInfo struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// SearchPerson runs the query against the requested sources (nil means "all
// enabled"). Sources run sequentially; a failure in one is recorded as that
// source's result and never aborts the batch.
func (s *LookupService) SearchPerson(ctx context.Context, query plugin.SearchQuery, sources []string) SearchResponse {
	if sources == nil {
		sources = s.enabledSources()
	} else {
		// unknown keys are silently dropped
		valid := sources[:0]
		for _, name := range sources {
			if s.Sources.Get(name) != nil {
				valid = append(valid, name)
			}
		}
		sources = valid
	}

	if len(sources) == 0 {
		return SearchResponse{
			Success:   false,
			Error:     "no valid sources specified",
			Query:     query,
			Results:   []plugin.SearchResult{},
			Timestamp: time.Now().UTC(),
		}
	}

	s.Logger.Info("starting lookup",
		zap.String("first_name", query.FirstName),
		zap.String("last_name", query.LastName),
		zap.Int("sources", len(sources)),
	)

	results := make([]plugin.SearchResult, 0, len(sources))
	for _, name := range sources {
		result := s.searchSource(ctx, name, query)
		outcome := "failed"
		if result.Success {
			outcome = "success"
		}
		metrics.SourceSearchesTotal.WithLabelValues(name, outcome).Inc()
		results = append(results, result)
	}

	successful := 0
	totalRecords := 0
	for _, r := range results {
		if r.Success {
			successful++
			totalRecords += len(r.Records)
		}
	}

	return SearchResponse{
		Success:           true,
		Query:             query,
		SourcesSearched:   len(sources),
		SourcesSuccessful: successful,
		TotalRecordsFound: totalRecords,
		Results:           results,
		Timestamp:         time.Now().UTC(),
	}
}

// searchSource runs one source and converts any error or panic into a failed
// per-source result.
func (s *LookupService) searchSource(ctx context.Context, name string, query plugin.SearchQuery) (result plugin.SearchResult) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("source panicked", zap.String("source", name), zap.Any("panic", r))
			result = plugin.SearchResult{Source: name, Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	source := s.Sources.Get(name)
	if source == nil {
		return plugin.SearchResult{Source: name, Success: false, Error: "unknown source: " + name}
	}

	res, err := source.Search(ctx, query)
	if err != nil {
		s.Logger.Warn("source search failed", zap.String("source", name), zap.Error(err))
		return plugin.SearchResult{Source: name, Success: false, Error: err.Error()}
	}
	if res.Source == "" {
		res.Source = name
	}
	return res
}

func (s *LookupService) enabledSources() []string {
	var out []string
	for _, name := range s.EnabledSources {
		if s.Sources.Get(name) != nil {
			out = append(out, name)
		}
	}
	return out
}

// AvailableSources lists every registered source with its enabled flag.
func (s *LookupService) AvailableSources() []SourceInfo {
	enabled := map[string]bool{}
	for _, name := range s.EnabledSources {
		enabled[name] = true
	}

	keys := s.Sources.Keys()
	sort.Strings(keys)

	out := make([]SourceInfo, 0, len(keys))
	for _, name := range keys {
		out = append(out, SourceInfo{Name: name, Enabled: enabled[name]})
	}
	return out
}

// SaveResult persists a search response: the envelope row plus one person
// record per hit from each successful source.
func (s *LookupService) SaveResult(resp SearchResponse, userID *int) (*model.LookupResult, error) {
	raw, err := json.Marshal(resp.Results)
	if err != nil {
		return nil, err
	}

	lr := &model.LookupResult{
		UserID:            userID,
		FirstName:         resp.Query.FirstName,
		LastName:          resp.Query.LastName,
		City:              resp.Query.City,
		State:             resp.Query.State,
		Age:               resp.Query.Age,
		SourcesSearched:   resp.SourcesSearched,
		SourcesSuccessful: resp.SourcesSuccessful,
		TotalRecordsFound: resp.TotalRecordsFound,
		RawResults:        raw,
	}

	var records []model.PersonRecord
	for _, sourceResult := range resp.Results {
		if !sourceResult.Success {
			continue
		}
		for _, rec := range sourceResult.Records {
			records = append(records, model.PersonRecord{
				Source:       sourceResult.Source,
				Name:         rec.Name,
				Age:          rec.Age,
				Location:     rec.Location,
				Addresses:    rec.Addresses,
				PhoneNumbers: rec.PhoneNumbers,
				Emails:       rec.Emails,
				Relatives:    rec.Relatives,
				ProfileURL:   rec.ProfileURL,
			})
		}
	}

	if err := s.LookupRepo.CreateResult(lr, records); err != nil {
		return nil, err
	}

	s.Logger.Info("saved lookup result",
		zap.Int("lookup_id", lr.ID),
		zap.Int("records", lr.TotalRecordsFound),
	)
	return lr, nil
}
