package service_test

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/nfields/obscura-backend/internal/errors"
	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/plugin"
)

// In-memory repositories shared by the service tests. They hold the same
// invariants the SQL ones do: FinalizeSuccess/FinalizeFailure move the unit
// and bump the owning campaign's counter together.

type memCampaignRepo struct {
	mu        sync.Mutex
	nextID    int
	campaigns map[int]*model.Campaign
}

func newMemCampaignRepo() *memCampaignRepo {
	return &memCampaignRepo{nextID: 1, campaigns: make(map[int]*model.Campaign)}
}

func (r *memCampaignRepo) Create(c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *memCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCampaignRepo) ListByUser(userID, offset, limit int, status string) ([]*model.Campaign, int, error) {
	all, _ := r.ListAllByUser(userID)
	filtered := []*model.Campaign{}
	for _, c := range all {
		if status == "" || c.Status == status {
			filtered = append(filtered, c)
		}
	}
	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func (r *memCampaignRepo) Update(c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *memCampaignRepo) UpdateStatus(campaignID int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.Status = status
	return nil
}

func (r *memCampaignRepo) SetLastExecution(campaignID int, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[campaignID]
	if !ok {
		return appErrors.NewCampaignNotFound(campaignID)
	}
	c.LastExecution = &t
	return nil
}

func (r *memCampaignRepo) CountByUser(userID int) (int, error) {
	all, _ := r.ListAllByUser(userID)
	return len(all), nil
}

func (r *memCampaignRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[id]; !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	delete(r.campaigns, id)
	return nil
}

func (r *memCampaignRepo) ListAllByUser(userID int) ([]*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Campaign{}
	for id := 1; id < r.nextID; id++ {
		c, ok := r.campaigns[id]
		if ok && c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memSubmissionRepo struct {
	mu        sync.Mutex
	nextID    int
	subs      map[int]*model.Submission
	order     []int
	campaigns *memCampaignRepo
}

func newMemSubmissionRepo(campaigns *memCampaignRepo) *memSubmissionRepo {
	return &memSubmissionRepo{nextID: 1, subs: make(map[int]*model.Submission), campaigns: campaigns}
}

func (r *memSubmissionRepo) BulkCreate(subs []*model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range subs {
		s.ID = r.nextID
		r.nextID++
		cp := *s
		r.subs[s.ID] = &cp
		r.order = append(r.order, s.ID)
	}
	return nil
}

func (r *memSubmissionRepo) GetByID(id int) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, appErrors.NewSubmissionNotFound(id)
	}
	cp := *s
	return &cp, nil
}

func (r *memSubmissionRepo) ListPending(campaignID int) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Submission{}
	for _, id := range r.order {
		s := r.subs[id]
		if s.CampaignID == campaignID && s.Status == model.SubmissionStatusPending {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSubmissionRepo) ListByCampaign(campaignID, offset, limit int, status string) ([]*model.Submission, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Submission{}
	for _, id := range r.order {
		s := r.subs[id]
		if s.CampaignID == campaignID && (status == "" || s.Status == status) {
			cp := *s
			out = append(out, &cp)
		}
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

func (r *memSubmissionRepo) CountByCampaign(campaignID int) (int, error) {
	_, total, err := r.ListByCampaign(campaignID, 0, 1<<30, "")
	return total, err
}

func (r *memSubmissionRepo) CountByStatus(campaignID int) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{"total": 0}
	for _, s := range r.subs {
		if s.CampaignID == campaignID {
			counts[s.Status]++
			counts["total"]++
		}
	}
	return counts, nil
}

func (r *memSubmissionRepo) FinalizeSuccess(submissionID, campaignID int, referenceID *string, submittedAt time.Time) error {
	r.mu.Lock()
	s, ok := r.subs[submissionID]
	if !ok {
		r.mu.Unlock()
		return appErrors.NewSubmissionNotFound(submissionID)
	}
	s.Status = model.SubmissionStatusSubmitted
	s.ReferenceID = referenceID
	s.SubmittedAt = &submittedAt
	r.mu.Unlock()

	r.campaigns.mu.Lock()
	defer r.campaigns.mu.Unlock()
	if c, ok := r.campaigns.campaigns[campaignID]; ok {
		c.SubmissionsCompleted++
	}
	return nil
}

func (r *memSubmissionRepo) FinalizeFailure(submissionID, campaignID int, status, errorMessage string) error {
	r.mu.Lock()
	s, ok := r.subs[submissionID]
	if !ok {
		r.mu.Unlock()
		return appErrors.NewSubmissionNotFound(submissionID)
	}
	s.Status = status
	s.ErrorMessage = &errorMessage
	r.mu.Unlock()

	r.campaigns.mu.Lock()
	defer r.campaigns.mu.Unlock()
	if c, ok := r.campaigns.campaigns[campaignID]; ok {
		c.SubmissionsFailed++
	}
	return nil
}

// stubSubmitter is the configurable plugin test double.
type stubSubmitter struct {
	name    string
	delay   time.Duration
	err     error
	failMsg string

	mu    sync.Mutex
	calls int
	first chan struct{} // closed on first call, if set
}

func (s *stubSubmitter) Name() string { return s.name }

func (s *stubSubmitter) Execute(ctx context.Context, profile model.Profile) (plugin.SubmissionResult, error) {
	s.mu.Lock()
	s.calls++
	if s.calls == 1 && s.first != nil {
		close(s.first)
	}
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return plugin.SubmissionResult{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return plugin.SubmissionResult{}, s.err
	}
	if s.failMsg != "" {
		return plugin.SubmissionResult{Site: s.name, Success: false, Error: s.failMsg}, nil
	}
	return plugin.SubmissionResult{Site: s.name, Success: true, ReferenceID: "ref-1"}, nil
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubSource is the lookup-side test double.
type stubSource struct {
	name    string
	records []plugin.Record
	err     error
	panics  bool
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(ctx context.Context, query plugin.SearchQuery) (plugin.SearchResult, error) {
	if s.panics {
		panic("source exploded")
	}
	if s.err != nil {
		return plugin.SearchResult{}, s.err
	}
	return plugin.SearchResult{Source: s.name, Success: true, Records: s.records}, nil
}
