package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supaops/internal/config"
)

// fakePostgREST serves just enough of the PostgREST protocol for the queries
// this package issues: exact counts via Content-Range, and JSON row bodies.
func fakePostgREST(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		q := r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case q.Get("date") != "":
			w.Header().Set("Content-Range", "0-0/7")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("[]"))
		case q.Get("created_at") != "":
			w.Header().Set("Content-Range", "0-0/12")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("[]"))
		case table == "apollo_credits":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[{"total": 342}]`))
		case table == "big_ids":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[{"id":9007199254740993,"name":"edge"}]`))
		case table == "empty_credits":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[]`))
		case table == "leads_db" && r.Method != http.MethodHead && q.Get("select") == "*":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[{"id":1,"name":"Ada","created_at":"2026-08-29T08:00:00Z"},{"id":2,"name":"Grace","created_at":"2026-08-29T09:30:00Z"}]`))
		default:
			w.Header().Set("Content-Range", "0-0/120")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("[]"))
		}
	}))
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(config.SupabaseConfig{URL: url, Key: "test-key"})
	require.NoError(t, err)
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(config.SupabaseConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUPABASE_URL")
}

func TestTotalRows(t *testing.T) {
	srv := fakePostgREST(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	n, err := c.TotalRows(context.Background(), "leads_db")
	require.NoError(t, err)
	assert.Equal(t, int64(120), n)
}

func TestCountWhereEq(t *testing.T) {
	srv := fakePostgREST(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	n, err := c.CountWhereEq(context.Background(), "calls", "date", "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestCountSince(t *testing.T) {
	srv := fakePostgREST(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	n, err := c.CountSince(context.Background(), "orgs_db", "created_at", "2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestFirstValue(t *testing.T) {
	srv := fakePostgREST(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	v, err := c.FirstValue(context.Background(), "apollo_credits", "total")
	require.NoError(t, err)
	assert.Equal(t, int64(342), v)

	v, err = c.FirstValue(context.Background(), "empty_credits", "total")
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestFetchAll(t *testing.T) {
	srv := fakePostgREST(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rows, err := c.FetchAll(context.Background(), "leads_db")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[0]["name"])
}

// Bigint ids above 2^53 cannot survive a float64 decode; FetchAll must hand
// them over digit for digit.
func TestFetchAllPreservesBigIntegers(t *testing.T) {
	srv := fakePostgREST(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	rows, err := c.FetchAll(context.Background(), "big_ids")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, json.Number("9007199254740993"), rows[0]["id"])
}

func TestCanceledContext(t *testing.T) {
	srv := fakePostgREST(t)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.TotalRows(ctx, "leads_db")
	assert.ErrorIs(t, err, context.Canceled)
}
