package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/plugin"
	"github.com/nfields/obscura-backend/internal/service"
)

type memLookupRepo struct {
	mu      sync.Mutex
	nextID  int
	results map[int]*model.LookupResult
}

func newMemLookupRepo() *memLookupRepo {
	return &memLookupRepo{nextID: 1, results: make(map[int]*model.LookupResult)}
}

func (r *memLookupRepo) CreateResult(lr *model.LookupResult, records []model.PersonRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lr.ID = r.nextID
	r.nextID++
	for i := range records {
		records[i].LookupResultID = lr.ID
	}
	lr.PersonRecords = records
	cp := *lr
	r.results[lr.ID] = &cp
	return nil
}

func (r *memLookupRepo) GetByID(id int) (*model.LookupResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lr, ok := r.results[id]
	if !ok {
		return nil, nil
	}
	cp := *lr
	return &cp, nil
}

func (r *memLookupRepo) List(userID *int, offset, limit int) ([]*model.LookupResult, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.LookupResult{}
	for id := 1; id < r.nextID; id++ {
		lr, ok := r.results[id]
		if !ok {
			continue
		}
		if userID != nil && (lr.UserID == nil || *lr.UserID != *userID) {
			continue
		}
		cp := *lr
		out = append(out, &cp)
	}
	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func newLookupFixture(enabled []string, sources ...plugin.Source) (*service.LookupService, *memLookupRepo) {
	registry := plugin.NewSourceRegistry()
	for _, s := range sources {
		registry.Register(s)
	}
	repo := newMemLookupRepo()
	return &service.LookupService{
		Sources:        registry,
		LookupRepo:     repo,
		EnabledSources: enabled,
		Logger:         zap.NewNop(),
	}, repo
}

func TestSearchPersonAggregatesAcrossSources(t *testing.T) {
	good := &stubSource{name: "radaris", records: []plugin.Record{
		{Name: strPtr("John Doe")}, {Name: strPtr("John M Doe")}, {Name: strPtr("Jon Doe")},
	}}
	bad := &stubSource{name: "thatsthem", err: errors.New("blocked by site")}
	svc, _ := newLookupFixture([]string{"radaris", "thatsthem"}, good, bad)

	resp := svc.SearchPerson(context.Background(), plugin.SearchQuery{FirstName: "John", LastName: "Doe"}, nil)

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.SourcesSearched)
	assert.Equal(t, 1, resp.SourcesSuccessful)
	assert.Equal(t, 3, resp.TotalRecordsFound)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "blocked by site", resp.Results[1].Error)
}

func TestSearchPersonDropsUnknownSources(t *testing.T) {
	good := &stubSource{name: "radaris", records: []plugin.Record{{Name: strPtr("John Doe")}}}
	svc, _ := newLookupFixture([]string{"radaris"}, good)

	resp := svc.SearchPerson(context.Background(),
		plugin.SearchQuery{FirstName: "John", LastName: "Doe"},
		[]string{"radaris", "nope", "also-nope"},
	)

	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.SourcesSearched, "unknown keys are dropped, not errors")
}

func TestSearchPersonRejectsEmptySourceSet(t *testing.T) {
	svc, _ := newLookupFixture([]string{"radaris"}, &stubSource{name: "radaris"})

	resp := svc.SearchPerson(context.Background(),
		plugin.SearchQuery{FirstName: "John", LastName: "Doe"},
		[]string{"nope"},
	)

	assert.False(t, resp.Success)
	assert.Equal(t, "no valid sources specified", resp.Error)
	assert.Empty(t, resp.Results)
}

func TestSearchPersonIsolatesSourcePanic(t *testing.T) {
	exploding := &stubSource{name: "radaris", panics: true}
	good := &stubSource{name: "thatsthem", records: []plugin.Record{{Name: strPtr("John Doe")}}}
	svc, _ := newLookupFixture([]string{"radaris", "thatsthem"}, exploding, good)

	resp := svc.SearchPerson(context.Background(), plugin.SearchQuery{FirstName: "John", LastName: "Doe"}, nil)

	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.SourcesSuccessful)
	assert.False(t, resp.Results[0].Success)
	assert.Contains(t, resp.Results[0].Error, "panic")
}

func TestAvailableSourcesSortedWithEnabledFlag(t *testing.T) {
	svc, _ := newLookupFixture([]string{"radaris"},
		&stubSource{name: "thatsthem"}, &stubSource{name: "radaris"})

	got := svc.AvailableSources()
	require.Len(t, got, 2)
	assert.Equal(t, "radaris", got[0].Name)
	assert.True(t, got[0].Enabled)
	assert.Equal(t, "thatsthem", got[1].Name)
	assert.False(t, got[1].Enabled)
}

func TestSaveResultPersistsRecordsFromSuccessfulSourcesOnly(t *testing.T) {
	good := &stubSource{name: "radaris", records: []plugin.Record{
		{Name: strPtr("John Doe"), Emails: []string{"jd@example.com"}},
		{Name: strPtr("John M Doe")},
	}}
	bad := &stubSource{name: "thatsthem", err: errors.New("blocked")}
	svc, repo := newLookupFixture([]string{"radaris", "thatsthem"}, good, bad)

	resp := svc.SearchPerson(context.Background(), plugin.SearchQuery{FirstName: "John", LastName: "Doe"}, nil)

	uid := 7
	stored, err := svc.SaveResult(resp, &uid)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.SourcesSearched)
	assert.Equal(t, 2, stored.TotalRecordsFound)

	got, err := repo.GetByID(stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.PersonRecords, 2)
	assert.Equal(t, "radaris", got.PersonRecords[0].Source)
	require.NotNil(t, got.UserID)
	assert.Equal(t, 7, *got.UserID)
}
