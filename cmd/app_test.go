package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/config"
	"github.com/Laisky/smart-email-finder/library/search"
)

func TestNewAppDefaults(t *testing.T) {
	t.Parallel()

	a, err := newApp(context.Background(), config.NewSettings(nil, nil))
	require.NoError(t, err)
	require.Equal(t, search.ModeHunter, a.defaultMode())

	ctrl, err := a.controller()
	require.NoError(t, err)
	require.NotNil(t, ctrl)
}

func TestNewAppRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	settings := config.NewSettings(nil, nil)
	settings.Generation.Provider = "nope"
	_, err := newApp(context.Background(), settings)
	require.Error(t, err)
}

func TestDefaultModeFallsBack(t *testing.T) {
	t.Parallel()

	settings := config.NewSettings(nil, nil)
	settings.Search.DefaultMode = "bogus"
	a, err := newApp(context.Background(), settings)
	require.NoError(t, err)
	require.Equal(t, search.ModeHunter, a.defaultMode())
}

func TestRunLookupPrintsState(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domain-search", r.URL.Path)
		assert.Equal(t, "acme.com", r.URL.Query().Get("domain"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"domain":"acme.com","organization":"Acme","emails":[
			{"value":"john.smith@acme.com","first_name":"John","last_name":"Smith","position":"CTO","confidence":94}
		]}}`))
	}))
	t.Cleanup(srv.Close)

	settings := config.NewSettings(nil, nil)
	settings.Search.Hunter.APIKey = "test-key"
	settings.Search.Hunter.Endpoint = srv.URL

	var out bytes.Buffer
	err := runLookup(context.Background(), settings, &out, "acme.com", "hunter", "")
	require.NoError(t, err)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	require.Len(t, snap.SearchResults, 1)
	require.Len(t, snap.DomainEmails, 1)
	require.Equal(t, "john.smith@acme.com", snap.DomainEmails[0].Address)
	require.Empty(t, snap.Error)
}

func TestRunLookupReportsFailure(t *testing.T) {
	t.Parallel()

	settings := config.NewSettings(nil, nil)
	settings.Search.Hunter.APIKey = ""

	var out bytes.Buffer
	err := runLookup(context.Background(), settings, &out, "acme.com", "hunter", "")
	require.Error(t, err)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	require.Contains(t, snap.Error, "Hunter.io search failed")
}

func TestRunLookupRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := runLookup(context.Background(), config.NewSettings(nil, nil), &out, "acme.com", "bing", "")
	require.Error(t, err)
	require.Zero(t, out.Len())
}
