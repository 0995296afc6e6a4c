package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
	"github.com/skykid17/smartlp-sub005/internal/devserver"
	"github.com/skykid17/smartlp-sub005/internal/store/jsonfile"
)

func TestSummary(t *testing.T) {
	results := []Result{
		{Name: "a", Items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn}}},
		{Name: "b", Items: []CheckItem{{Status: StatusFail}, {Status: StatusPass}}},
	}

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
}

func TestConfigCheck(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(cfg *config.Config)
		wantStatus map[string]Status
	}{
		{
			name:   "valid",
			mutate: func(cfg *config.Config) { cfg.API.Token = "secret" },
			wantStatus: map[string]Status{
				"config file": StatusPass,
				"values":      StatusPass,
			},
		},
		{
			name: "bad url and missing token",
			mutate: func(cfg *config.Config) {
				cfg.API.BaseURL = "ftp://backend"
			},
			wantStatus: map[string]Status{
				"config file":  StatusPass,
				"api.base_url": StatusFail,
				"API.token":    StatusWarn,
			},
		},
		{
			name:   "structural error",
			mutate: func(cfg *config.Config) { cfg.API.Token, cfg.Tables.PageSize = "secret", 0 },
			wantStatus: map[string]Status{
				"config file": StatusPass,
				"values":      StatusFail,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			result := NewConfigCheck(&cfg, filepath.Join(t.TempDir(), "missing.yaml")).Run(context.Background())
			assert.Equal(t, "Configuration", result.Name)

			got := make(map[string]Status, len(result.Items))
			for _, item := range result.Items {
				got[item.Label] = item.Status
			}
			assert.Equal(t, tt.wantStatus, got)
		})
	}
}

func newBackend(t *testing.T, opts devserver.Options, token string) *api.Client {
	t.Helper()
	ts := httptest.NewServer(devserver.New(devserver.SeedDataset(), opts).Handler())
	t.Cleanup(ts.Close)
	return api.New(api.Options{BaseURL: ts.URL, Token: token})
}

func TestBackendCheck_Reachable(t *testing.T) {
	result := NewBackendCheck(newBackend(t, devserver.Options{}, "")).Run(context.Background())

	require.Len(t, result.Items, 2)
	assert.Equal(t, "entries", result.Items[0].Label)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "60 records")
	assert.Equal(t, "rules", result.Items[1].Label)
	assert.Contains(t, result.Items[1].Detail, "3 records")
}

func TestBackendCheck_Unauthorized(t *testing.T) {
	result := NewBackendCheck(newBackend(t, devserver.Options{Token: "secret"}, "wrong")).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Equal(t, "unauthorized, check api.token", result.Items[0].Detail)
}

func TestBackendCheck_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	result := NewBackendCheck(api.New(api.Options{BaseURL: url})).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "unreachable")
}

func TestStoreCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.json")
	store := jsonfile.NewKVStore(path)
	selection.NewStore(store, "smartlp", "entries").Set(selection.NewSet("1", "2").IDs())

	result := NewStoreCheck(store, "json", "smartlp", []string{"entries", "rules"}).Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, CheckItem{Label: "json", Status: StatusPass, Detail: "read/write ok"}, result.Items[0])
	assert.Equal(t, CheckItem{Label: "smartlp_entries", Status: StatusPass, Detail: "2 selected"}, result.Items[1])
	assert.Equal(t, CheckItem{Label: "smartlp_rules", Status: StatusPass, Detail: "0 selected"}, result.Items[2])

	has, err := store.Has(context.Background(), probeKey)
	require.NoError(t, err)
	assert.False(t, has, "probe key is cleaned up")
}

func TestStoreCheck_Unwritable(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes every write fail.
	path := filepath.Join(dir, "selection.json")
	require.NoError(t, os.Mkdir(path, 0o755))

	result := NewStoreCheck(jsonfile.NewKVStore(path), "json", "smartlp", []string{"entries"}).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "write")
}
