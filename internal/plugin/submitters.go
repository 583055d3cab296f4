// internal/plugin/submitters.go
package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nfields/obscura-backend/internal/model"
)

// ManualSubmitter does not touch the network. It always succeeds and returns
// a reference id plus human-readable instructions so an operator can perform
// the submission by hand. Useful for sites that block automation entirely.
type ManualSubmitter struct{}

func (m *ManualSubmitter) Name() string { return "manual" }

func (m *ManualSubmitter) Execute(_ context.Context, profile model.Profile) (SubmissionResult, error) {
	now := time.Now().UTC()
	refID := "manual-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return SubmissionResult{
		Site:        m.Name(),
		Success:     true,
		ReferenceID: refID,
		SubmittedAt: &now,
	}, nil
}

// Instructions renders the manual submission steps for a profile.
func (m *ManualSubmitter) Instructions(profile model.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Manual submission instructions for: %s %s\n", profile.FirstName, profile.LastName)
	if len(profile.Addresses) > 0 {
		a := profile.Addresses[0]
		fmt.Fprintf(&b, "- List current address as %s, %s, %s %s\n", a.Street, a.City, a.State, a.Zip)
	}
	for _, p := range profile.PhoneNumbers {
		fmt.Fprintf(&b, "- Register phone %s (%s) in public directories\n", p.Number, p.Type)
	}
	for _, e := range profile.Emails {
		fmt.Fprintf(&b, "- Create public profile using email %s\n", e)
	}
	return b.String()
}

// WebformSubmitter posts the profile as JSON to a directory-style endpoint.
// Browser-driven submitters live outside this repo; this is the one built-in
// network path and it deliberately stays plain HTTP.
type WebformSubmitter struct {
	SiteName string
	Endpoint string
	Client   *http.Client
}

func NewWebformSubmitter(site, endpoint string) *WebformSubmitter {
	return &WebformSubmitter{
		SiteName: site,
		Endpoint: endpoint,
		Client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
	}
}

func (w *WebformSubmitter) Name() string { return w.SiteName }

func (w *WebformSubmitter) Execute(ctx context.Context, profile model.Profile) (SubmissionResult, error) {
	if w.Endpoint == "" {
		return SubmissionResult{
			Site:    w.SiteName,
			Success: false,
			Error:   "no endpoint configured",
		}, nil
	}

	body, err := json.Marshal(profile)
	if err != nil {
		return SubmissionResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.Endpoint, bytes.NewReader(body))
	if err != nil {
		return SubmissionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return SubmissionResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return SubmissionResult{
			Site:    w.SiteName,
			Success: false,
			Error:   fmt.Sprintf("endpoint returned %d", resp.StatusCode),
		}, nil
	}

	var out struct {
		ReferenceID string `json:"reference_id"`
	}
	// reference id is optional; some directories just 200 with no body
	_ = json.NewDecoder(resp.Body).Decode(&out)

	now := time.Now().UTC()
	return SubmissionResult{
		Site:        w.SiteName,
		Success:     true,
		ReferenceID: out.ReferenceID,
		SubmittedAt: &now,
	}, nil
}
