// internal/plugin/plugin.go
package plugin

import (
	"context"
	"sync"
	"time"

	"github.com/nfields/obscura-backend/internal/model"
)

// SubmissionResult is what a site submitter reports back for one attempt.
type SubmissionResult struct {
	Site        string     `json:"site"`
	Success     bool       `json:"success"`
	ReferenceID string     `json:"reference_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// Submitter pushes one fake profile into one upstream site. Implementations
// are black boxes; the engine only sees this contract.
type Submitter interface {
	Name() string
	Execute(ctx context.Context, profile model.Profile) (SubmissionResult, error)
}

// SearchQuery identifies the person a source should be searched for.
type SearchQuery struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Age       *int    `json:"age,omitempty"`
}

// Record is one person hit returned by a source. Every field is optional;
// scrapers return whatever the site exposes.
type Record struct {
	Name         *string  `json:"name,omitempty"`
	Age          *int     `json:"age,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Addresses    []string `json:"addresses,omitempty"`
	PhoneNumbers []string `json:"phone_numbers,omitempty"`
	Emails       []string `json:"emails,omitempty"`
	Relatives    []string `json:"relatives,omitempty"`
	ProfileURL   *string  `json:"profile_url,omitempty"`
}

// SearchResult is one source's outcome within a lookup batch.
type SearchResult struct {
	Source  string   `json:"source"`
	Success bool     `json:"success"`
	Records []Record `json:"records"`
	Error   string   `json:"error,omitempty"`
}

// Source searches one external site for one identity query.
type Source interface {
	Name() string
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// SubmitterRegistry maps site keys to submitters. Built once at process start.
type SubmitterRegistry struct {
	mu         sync.RWMutex
	submitters map[string]Submitter
}

func NewSubmitterRegistry() *SubmitterRegistry {
	return &SubmitterRegistry{submitters: make(map[string]Submitter)}
}

func (r *SubmitterRegistry) Register(s Submitter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitters[s.Name()] = s
}

// Get returns nil when no submitter is registered for the site key.
func (r *SubmitterRegistry) Get(site string) Submitter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.submitters[site]
}

func (r *SubmitterRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.submitters))
	for k := range r.submitters {
		keys = append(keys, k)
	}
	return keys
}

// SourceRegistry maps source keys to lookup sources.
type SourceRegistry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{sources: make(map[string]Source)}
}

func (r *SourceRegistry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

func (r *SourceRegistry) Get(name string) Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[name]
}

func (r *SourceRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.sources))
	for k := range r.sources {
		keys = append(keys, k)
	}
	return keys
}
