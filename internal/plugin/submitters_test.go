package plugin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfields/obscura-backend/internal/model"
	"github.com/nfields/obscura-backend/internal/plugin"
)

func sampleProfile() model.Profile {
	return model.Profile{
		FirstName: "John",
		LastName:  "Doe",
		Age:       42,
		Addresses: []model.Address{
			{Street: "123 Main St", City: "Austin", State: "TX", Zip: "78701", Type: "current"},
		},
		PhoneNumbers: []model.Phone{{Number: "(512) 555-0134", Type: "mobile"}},
		Emails:       []string{"john.doe@example.com"},
	}
}

func TestManualSubmitterAlwaysSucceeds(t *testing.T) {
	m := &plugin.ManualSubmitter{}

	result, err := m.Execute(context.Background(), sampleProfile())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.ReferenceID, "manual-"))
	assert.Len(t, result.ReferenceID, len("manual-")+8)
	assert.NotNil(t, result.SubmittedAt)

	instructions := m.Instructions(sampleProfile())
	assert.Contains(t, instructions, "John Doe")
	assert.Contains(t, instructions, "123 Main St")
	assert.Contains(t, instructions, "john.doe@example.com")
}

func TestWebformSubmitterPostsProfile(t *testing.T) {
	var received model.Profile
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]string{"reference_id": "wf-abc123"})
	}))
	defer srv.Close()

	sub := plugin.NewWebformSubmitter("webform", srv.URL)
	result, err := sub.Execute(context.Background(), sampleProfile())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "wf-abc123", result.ReferenceID)
	assert.Equal(t, "John", received.FirstName)
}

func TestWebformSubmitterNon2xxIsBusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	sub := plugin.NewWebformSubmitter("webform", srv.URL)
	result, err := sub.Execute(context.Background(), sampleProfile())
	require.NoError(t, err, "an upstream rejection is a recorded outcome, not an error")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "422")
}

func TestWebformSubmitterWithoutEndpoint(t *testing.T) {
	sub := plugin.NewWebformSubmitter("webform", "")
	result, err := sub.Execute(context.Background(), sampleProfile())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "no endpoint configured", result.Error)
}

func TestHTTPSourceParsesGatewayRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "radaris", r.URL.Query().Get("source"))
		assert.Equal(t, "John", r.URL.Query().Get("first_name"))
		assert.Equal(t, "TX", r.URL.Query().Get("state"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"records": []map[string]interface{}{
				{"name": "John Doe", "age": 42, "location": "Austin, TX"},
				{"name": "John M Doe"},
			},
		})
	}))
	defer srv.Close()

	state := "TX"
	src := plugin.NewHTTPSource("radaris", srv.URL)
	result, err := src.Search(context.Background(), plugin.SearchQuery{
		FirstName: "John", LastName: "Doe", State: &state,
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "radaris", result.Source)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "John Doe", *result.Records[0].Name)
	assert.Equal(t, 42, *result.Records[0].Age)
}

func TestHTTPSourceGatewayErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "access blocked by site"})
	}))
	defer srv.Close()

	src := plugin.NewHTTPSource("radaris", srv.URL)
	_, err := src.Search(context.Background(), plugin.SearchQuery{FirstName: "John", LastName: "Doe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access blocked")
}

func TestRegistriesReturnNilForUnknownKeys(t *testing.T) {
	submitters := plugin.NewSubmitterRegistry()
	assert.Nil(t, submitters.Get("nope"))
	submitters.Register(&plugin.ManualSubmitter{})
	assert.NotNil(t, submitters.Get("manual"))
	assert.Equal(t, []string{"manual"}, submitters.Keys())

	sources := plugin.NewSourceRegistry()
	assert.Nil(t, sources.Get("radaris"))
}
