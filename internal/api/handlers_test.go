package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notekeeper/internal/api"
	"github.com/aretw0/notekeeper/pkg/adapters/memory"
	"github.com/aretw0/notekeeper/pkg/core"
)

func newTestServer(t *testing.T, opts api.Options) (*httptest.Server, *core.Service) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	svc := core.NewService(memory.New(),
		core.WithIDAllocator(core.NewCounterAllocator()),
		core.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
	)
	srv := httptest.NewServer(api.NewRouter(svc, opts))
	t.Cleanup(srv.Close)
	return srv, svc
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNotesCRUD(t *testing.T) {
	srv, _ := newTestServer(t, api.Options{})

	resp := do(t, http.MethodPost, srv.URL+"/api/notes",
		`{"title":"Binary search","category":"DSA","content":"<p>halve it</p>"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	created := decode[core.Note](t, resp)
	assert.Equal(t, "1", created.ID)
	assert.Equal(t, "Binary search", created.Title)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	resp = do(t, http.MethodGet, srv.URL+"/api/notes/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decode[core.Note](t, resp))

	resp = do(t, http.MethodPut, srv.URL+"/api/notes/1", `{"content":"<p>log n</p>"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[core.Note](t, resp)
	assert.Equal(t, "Binary search", updated.Title, "absent fields are kept")
	assert.Equal(t, "DSA", updated.Category)
	assert.Equal(t, "<p>log n</p>", updated.Content)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	resp = do(t, http.MethodDelete, srv.URL+"/api/notes/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/notes/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode[api.ErrorResponse](t, resp).Error, "not found")

	resp = do(t, http.MethodDelete, srv.URL+"/api/notes/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "delete is idempotent")
}

func TestListNotes(t *testing.T) {
	srv, svc := newTestServer(t, api.Options{})
	ctx := context.Background()

	t.Run("empty collection is an array", func(t *testing.T) {
		resp := do(t, http.MethodGet, srv.URL+"/api/notes", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		assert.JSONEq(t, `[]`, string(raw))
	})

	for _, in := range []core.NoteInput{
		{Title: "Sorting Algorithms", Category: "DSA"},
		{Title: "Graph algo", Category: "DSA"},
		{Title: "Algebra", Category: "Math"},
		{Title: "Heaps", Category: "DSA"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	cases := []struct {
		name   string
		query  string
		titles []string
	}{
		{"all", "", []string{"Sorting Algorithms", "Graph algo", "Algebra", "Heaps"}},
		{"text", "?q=ALGO", []string{"Sorting Algorithms", "Graph algo"}},
		{"category", "?category=Math", []string{"Algebra"}},
		{"both", "?q=algo&category=DSA", []string{"Sorting Algorithms", "Graph algo"}},
		{"no match", "?q=zzz", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+"/api/notes"+tc.query, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			notes := decode[[]core.Note](t, resp)
			titles := make([]string, 0, len(notes))
			for _, n := range notes {
				titles = append(titles, n.Title)
			}
			assert.Equal(t, tc.titles, titles)
		})
	}
}

func TestBadRequests(t *testing.T) {
	srv, svc := newTestServer(t, api.Options{})
	_, err := svc.Create(context.Background(), core.NoteInput{Title: "Keep"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"blank title", http.MethodPost, "/api/notes", `{"title":"   "}`, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/api/notes", `{"content":"x"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/notes", `{"title":`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/notes", "", http.StatusBadRequest},
		{"client id", http.MethodPost, "/api/notes", `{"id":"x","title":"t"}`, http.StatusBadRequest},
		{"client timestamp", http.MethodPut, "/api/notes/1", `{"createdAt":"2020-01-01T00:00:00Z"}`, http.StatusBadRequest},
		{"blank title patch", http.MethodPut, "/api/notes/1", `{"title":""}`, http.StatusBadRequest},
		{"patch unknown", http.MethodPut, "/api/notes/404", `{"title":"x"}`, http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/nothing", "", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/notes/1", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, tc.method, srv.URL+tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, decode[api.ErrorResponse](t, resp).Error)
		})
	}

	n, err := svc.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Keep", n.Title, "rejected requests do not mutate")
}

func TestStatsStateAndHealth(t *testing.T) {
	srv, svc := newTestServer(t, api.Options{})
	ctx := context.Background()
	for i := range 7 {
		cat := "DSA"
		if i%2 == 1 {
			cat = "Math"
		}
		_, err := svc.Create(ctx, core.NoteInput{Title: fmt.Sprintf("n%d", i), Category: cat})
		require.NoError(t, err)
	}

	resp := do(t, http.MethodGet, srv.URL+"/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[core.Stats](t, resp)
	assert.Equal(t, 7, st.Total)
	assert.Equal(t, 5, st.Recent)
	assert.Equal(t, map[string]int{"DSA": 4, "Math": 3}, st.Categories)

	resp = do(t, http.MethodGet, srv.URL+"/api/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[map[string]any](t, resp)
	assert.Equal(t, "service", state["component"])
	inner, ok := state["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "memory_store", inner["store_type"])
	assert.EqualValues(t, 7, inner["mutations"])

	resp = do(t, http.MethodGet, srv.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

// failingStore reports err on every write.
type failingStore struct {
	*memory.Store
	err error
}

func (f failingStore) Put(ctx context.Context, n core.Note) error { return f.err }

func TestStorageErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unavailable", fmt.Errorf("%w: disk gone", core.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := core.NewService(failingStore{Store: memory.New(), err: tc.err})
			srv := httptest.NewServer(api.NewRouter(svc, api.Options{}))
			defer srv.Close()

			resp := do(t, http.MethodPost, srv.URL+"/api/notes", `{"title":"t"}`)
			assert.Equal(t, tc.status, resp.StatusCode)
			msg := decode[api.ErrorResponse](t, resp).Error
			assert.NotContains(t, msg, "disk gone")
			assert.NotContains(t, msg, "boom")
		})
	}
}
