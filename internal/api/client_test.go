package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/devserver"
)

func newBackend(t *testing.T, opts devserver.Options) (*api.Client, *devserver.Server) {
	t.Helper()
	srv := devserver.New(devserver.SeedDataset(), opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return api.New(api.Options{BaseURL: ts.URL + "/", Token: opts.Token}), srv
}

func TestClient_QueryEntries(t *testing.T) {
	client, _ := newBackend(t, devserver.Options{})

	page, err := client.QueryEntries(context.Background(), record.Query{
		Search:   "nginx",
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 24, page.Total)
	require.Len(t, page.Results, 10)
	assert.Equal(t, "nginx", page.Results[0].SourceType)
}

func TestClient_QueryRules(t *testing.T) {
	client, _ := newBackend(t, devserver.Options{})

	page, err := client.QueryRules(context.Background(), record.Query{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

func TestClient_FetchConfig(t *testing.T) {
	client, srv := newBackend(t, devserver.Options{})

	rows, err := client.FetchConfig(context.Background(), record.IDs("1", "3"))
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, record.ID("3"), rows[1].ID)
	assert.Equal(t, record.IDs("1", "3"), srv.LastConfigIDs())
	assert.Equal(t, 1, srv.Calls(devserver.RouteConfig))
}

func TestClient_Delete(t *testing.T) {
	client, srv := newBackend(t, devserver.Options{})
	ctx := context.Background()

	require.NoError(t, client.DeleteEntry(ctx, "5"))
	require.NoError(t, client.DeleteRule(ctx, "2"))
	assert.Len(t, srv.Data().Entries(), 59)
	assert.Len(t, srv.Data().Rules(), 2)

	err := client.DeleteEntry(ctx, "5")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "entry not found", apiErr.Message)
}

func TestClient_FindMatch(t *testing.T) {
	client, _ := newBackend(t, devserver.Options{})

	spans, err := client.FindMatch(context.Background(), "2024-01-01 ERROR boom", `\S+ (?P<level>[A-Z]+) \w+`)
	require.NoError(t, err)

	assert.ElementsMatch(t, []record.MatchSpan{
		{Name: "matched1", Start: 0, End: 21, Value: "2024-01-01 ERROR boom"},
		{Name: "level", Start: 11, End: 16, Value: "ERROR"},
	}, spans)
}

func TestClient_FindMatch_InvalidRegex(t *testing.T) {
	client, _ := newBackend(t, devserver.Options{})

	_, err := client.FindMatch(context.Background(), "x", "(")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestClient_Token(t *testing.T) {
	client, _ := newBackend(t, devserver.Options{Token: "s3cret"})
	_, err := client.QueryRules(context.Background(), record.Query{})
	require.NoError(t, err)

	srv := devserver.New(devserver.SeedDataset(), devserver.Options{Token: "s3cret"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, err = api.New(api.Options{BaseURL: ts.URL}).QueryRules(context.Background(), record.Query{})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_SendsRequestID(t *testing.T) {
	var got []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get(api.RequestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[],"total_entries":0}`))
	}))
	defer ts.Close()

	client := api.New(api.Options{BaseURL: ts.URL})
	for range 2 {
		_, err := client.QueryEntries(context.Background(), record.Query{})
		require.NoError(t, err)
	}

	require.Len(t, got, 2)
	assert.Len(t, got[0], 36)
	assert.NotEqual(t, got[0], got[1])
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error key", body: `{"error":"boom"}`, want: "boom"},
		{name: "message key", body: `{"message":"bad page"}`, want: "bad page"},
		{name: "plain text", body: "upstream down", want: "upstream down"},
		{name: "empty", body: "", want: "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := api.New(api.Options{BaseURL: ts.URL}).FetchConfig(context.Background(), record.IDs("1"))
			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": 7}`))
	}))
	defer ts.Close()

	_, err := api.New(api.Options{BaseURL: ts.URL}).QueryEntries(context.Background(), record.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode GET /api/entries")
}

func TestClient_DeleteMany(t *testing.T) {
	client, srv := newBackend(t, devserver.Options{})

	res := client.DeleteMany(context.Background(), api.KindEntries, record.IDs("1", "2", "999"), rate.NewLimiter(rate.Inf, 1))

	assert.Equal(t, record.IDs("1", "2"), res.Deleted)
	require.Len(t, res.Failed, 1)
	assert.Contains(t, res.Failed, record.ID("999"))
	assert.Equal(t, 3, srv.Calls(devserver.RouteDelete))
	assert.Len(t, srv.Data().Entries(), 58)
}

func TestClient_DeleteMany_Canceled(t *testing.T) {
	client, srv := newBackend(t, devserver.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := client.DeleteMany(ctx, api.KindRules, record.IDs("1", "2"), rate.NewLimiter(1, 1))

	assert.Empty(t, res.Deleted)
	require.Len(t, res.Failed, 2)
	assert.ErrorIs(t, res.Failed["1"], context.Canceled)
	assert.Zero(t, srv.Calls(devserver.RouteDelete))
}

func TestClient_InjectedFailure(t *testing.T) {
	client, srv := newBackend(t, devserver.Options{})
	srv.FailNext(devserver.RouteConfig, http.StatusServiceUnavailable)

	_, err := client.FetchConfig(context.Background(), record.IDs("1"))
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "injected failure", apiErr.Message)

	rows, err := client.FetchConfig(context.Background(), record.IDs("1"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
