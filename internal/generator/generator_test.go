package generator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfields/obscura-backend/internal/generator"
	"github.com/nfields/obscura-backend/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// zipTable maps every reference zip to its (city, state, area code) tuple so
// generated addresses and phones can be checked for internal consistency.
func zipTable() map[string]generator.Location {
	table := make(map[string]generator.Location, len(generator.USLocations))
	for _, loc := range generator.USLocations {
		table[loc.Zip] = loc
	}
	return table
}

func TestGenerateProducesConsistentAddresses(t *testing.T) {
	g := generator.NewWithSeed(42)
	table := zipTable()

	for i := 0; i < 50; i++ {
		p := g.Generate(nil)

		require.NotEmpty(t, p.Addresses)
		assert.Equal(t, "current", p.Addresses[0].Type)
		for j, addr := range p.Addresses {
			loc, ok := table[addr.Zip]
			require.True(t, ok, "zip %s must come from the reference table", addr.Zip)
			assert.Equal(t, loc.City, addr.City)
			assert.Equal(t, loc.State, addr.State)
			if j > 0 {
				assert.Equal(t, "previous", addr.Type)
			}
		}

		assert.GreaterOrEqual(t, p.Age, 21)
		assert.LessOrEqual(t, p.Age, 85)
		assert.NotEmpty(t, p.Emails)
		assert.NotEmpty(t, p.PhoneNumbers)
	}
}

func TestGenerateHonorsTemplateConstraints(t *testing.T) {
	g := generator.NewWithSeed(7)

	template := &model.ProfileTemplate{
		Gender:         "F",
		State:          "TX",
		AgeRange:       []int{30, 40},
		CountAddresses: 2,
		CountPhones:    1,
	}

	for i := 0; i < 25; i++ {
		p := g.Generate(template)
		assert.Equal(t, "F", p.Gender)
		assert.GreaterOrEqual(t, p.Age, 30)
		assert.LessOrEqual(t, p.Age, 40)
		require.Len(t, p.Addresses, 2)
		for _, addr := range p.Addresses {
			assert.Equal(t, "TX", addr.State)
		}
		assert.Len(t, p.PhoneNumbers, 1)
	}
}

func TestGenerateEmailsReferenceTheName(t *testing.T) {
	g := generator.NewWithSeed(3)
	p := g.Generate(nil)

	first := strings.ToLower(p.FirstName)
	last := strings.ToLower(p.LastName)
	for _, email := range p.Emails {
		local := strings.SplitN(strings.ToLower(email), "@", 2)[0]
		assert.True(t,
			strings.Contains(local, first) || strings.Contains(local, last) ||
				strings.Contains(local, first[:1]),
			"email %q should derive from %s %s", email, p.FirstName, p.LastName)
	}
}

func TestGenerateBatchCapsAtMaxAndPrefersUniqueNames(t *testing.T) {
	g := generator.NewWithSeed(11)

	profiles := g.GenerateBatch(generator.MaxBatchSize+50, nil)
	assert.Len(t, profiles, generator.MaxBatchSize)

	small := g.GenerateBatch(20, nil)
	seen := map[string]int{}
	for _, p := range small {
		seen[p.FirstName+" "+p.LastName]++
	}
	// best effort, but with 34x40 name combinations 20 draws should not all
	// collide
	assert.Greater(t, len(seen), 15)
}

func TestGeneratePoisoningForcesTargetName(t *testing.T) {
	g := generator.NewWithSeed(99)

	profiles := g.GeneratePoisoning("John", "Doe", 40, strPtr("TX"), intPtr(42))
	require.Len(t, profiles, 40)

	inTX := 0
	relativesSharingName := 0
	for _, p := range profiles {
		assert.Equal(t, "John", p.FirstName)
		assert.Equal(t, "Doe", p.LastName)
		assert.GreaterOrEqual(t, p.Age, 35)
		assert.LessOrEqual(t, p.Age, 49)

		for _, rel := range p.Relatives {
			if strings.HasSuffix(rel, " Doe") {
				relativesSharingName++
			}
		}

		require.NotEmpty(t, p.Addresses)
		if p.Addresses[0].State == "TX" {
			inTX++
		}
	}
	assert.Greater(t, relativesSharingName, 0, "relatives must be regenerated around the target surname")

	// ~30% should land in the real state; generous bounds keep this stable
	// across seeds
	assert.Greater(t, inTX, 2)
	assert.Less(t, inTX, 30)

	// addresses must vary across profiles, only the name is pinned
	streets := map[string]bool{}
	for _, p := range profiles {
		streets[p.Addresses[0].Street] = true
	}
	assert.Greater(t, len(streets), 20)
}

func TestGeneratePoisoningToleratesEmptyNameParts(t *testing.T) {
	g := generator.NewWithSeed(13)

	for _, pair := range [][2]string{{"John", ""}, {"", "Doe"}, {"", ""}} {
		profiles := g.GeneratePoisoning(pair[0], pair[1], 3, nil, nil)
		require.Len(t, profiles, 3)
		for _, p := range profiles {
			assert.Equal(t, pair[0], p.FirstName)
			assert.Equal(t, pair[1], p.LastName)
			assert.NotEmpty(t, p.Emails)
			for _, email := range p.Emails {
				assert.Contains(t, email, "@")
			}
		}
	}
}

func TestGeneratePoisoningWithoutRealInfo(t *testing.T) {
	g := generator.NewWithSeed(5)

	profiles := g.GeneratePoisoning("Jane", "Smith", 10, nil, nil)
	require.Len(t, profiles, 10)
	for _, p := range profiles {
		assert.Equal(t, "Jane", p.FirstName)
		assert.Equal(t, "Smith", p.LastName)
		assert.GreaterOrEqual(t, p.Age, 21)
		assert.LessOrEqual(t, p.Age, 85)
	}
}

func TestLocationsByStateFiltersReferenceTable(t *testing.T) {
	for _, loc := range generator.LocationsByState("CO") {
		assert.Equal(t, "CO", loc.State)
	}
	assert.NotEmpty(t, generator.LocationsByState("CO"))
	assert.Empty(t, generator.LocationsByState("ZZ"))
	assert.Contains(t, generator.AllStates(), "TX")
}
