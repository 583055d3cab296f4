// internal/service/accuracy_service.go
package service

import (
	"math"
	"strings"

	"github.com/nfields/obscura-backend/internal/plugin"
)

// RealInfo is the known-truth identity that lookup records are scored against.
type RealInfo struct {
	FirstName string
	LastName  string
	City      string
	State     string
	Age       *int
	Phones    []string
	Emails    []string
}

// CategoryTally is the total/accurate pair for one data-point category.
type CategoryTally struct {
	Total    int `json:"total"`
	Accurate int `json:"accurate"`
}

// AccuracyBreakdown holds per-category tallies. Always populated, even when
// there were no data points at all.
type AccuracyBreakdown struct {
	Names     CategoryTally `json:"names"`
	Ages      CategoryTally `json:"ages"`
	Addresses CategoryTally `json:"addresses"`
	Phones    CategoryTally `json:"phones"`
	Emails    CategoryTally `json:"emails"`
}

// AccuracyResult is the scored comparison of lookup records against RealInfo.
type AccuracyResult struct {
	AccuracyScore      float64           `json:"accuracy_score"`
	DataPointsTotal    int               `json:"data_points_total"`
	DataPointsAccurate int               `json:"data_points_accurate"`
	Breakdown          AccuracyBreakdown `json:"breakdown"`
}

// CalculateAccuracy measures how much of the target's real info is still
// visible across the given per-source results. Only successful sources count.
// Pure function; no store access.
func CalculateAccuracy(results []plugin.SearchResult, real RealInfo) AccuracyResult {
	var breakdown AccuracyBreakdown

	realFirst := strings.ToLower(strings.TrimSpace(real.FirstName))
	realLast := strings.ToLower(strings.TrimSpace(real.LastName))
	realCity := strings.ToLower(strings.TrimSpace(real.City))
	realState := strings.ToLower(strings.TrimSpace(real.State))

	realPhones := map[string]bool{}
	for _, p := range real.Phones {
		if n := normalizePhone(p); n != "" {
			realPhones[n] = true
		}
	}
	realEmails := map[string]bool{}
	for _, e := range real.Emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			realEmails[e] = true
		}
	}

	for _, sourceResult := range results {
		if !sourceResult.Success {
			continue
		}

		for _, record := range sourceResult.Records {
			// name
			if record.Name != nil {
				name := strings.ToLower(strings.TrimSpace(*record.Name))
				if name != "" {
					breakdown.Names.Total++
					if realFirst != "" && realLast != "" &&
						strings.Contains(name, realFirst) && strings.Contains(name, realLast) {
						breakdown.Names.Accurate++
					}
				}
			}

			// age: off by one still counts
			if record.Age != nil {
				breakdown.Ages.Total++
				if real.Age != nil {
					diff := *record.Age - *real.Age
					if diff < 0 {
						diff = -diff
					}
					if diff <= 1 {
						breakdown.Ages.Accurate++
					}
				}
			}

			// addresses, with the top-level location treated as one more
			addresses := record.Addresses
			if record.Location != nil && *record.Location != "" {
				addresses = append(append([]string{}, addresses...), *record.Location)
			}
			for _, addr := range addresses {
				addrStr := strings.ToLower(addr)
				if addrStr == "" {
					continue
				}
				breakdown.Addresses.Total++
				if realCity != "" && realState != "" &&
					strings.Contains(addrStr, realCity) && strings.Contains(addrStr, realState) {
					breakdown.Addresses.Accurate++
				}
			}

			// phones: digits-only exact match
			for _, phone := range record.PhoneNumbers {
				if phone == "" {
					continue
				}
				breakdown.Phones.Total++
				if len(realPhones) > 0 && realPhones[normalizePhone(phone)] {
					breakdown.Phones.Accurate++
				}
			}

			// emails: case-insensitive exact match
			for _, email := range record.Emails {
				if email == "" {
					continue
				}
				breakdown.Emails.Total++
				if len(realEmails) > 0 && realEmails[strings.ToLower(strings.TrimSpace(email))] {
					breakdown.Emails.Accurate++
				}
			}
		}
	}

	total := breakdown.Names.Total + breakdown.Ages.Total + breakdown.Addresses.Total +
		breakdown.Phones.Total + breakdown.Emails.Total
	accurate := breakdown.Names.Accurate + breakdown.Ages.Accurate + breakdown.Addresses.Accurate +
		breakdown.Phones.Accurate + breakdown.Emails.Accurate

	score := 0.0
	if total > 0 {
		score = math.Round(float64(accurate)/float64(total)*1000) / 10
	}

	return AccuracyResult{
		AccuracyScore:      score,
		DataPointsTotal:    total,
		DataPointsAccurate: accurate,
		Breakdown:          breakdown,
	}
}

// normalizePhone strips a phone number down to just digits for comparison.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
