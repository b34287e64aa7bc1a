package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/hackfinder/pkg/api"
	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	idx, err := storage.Open(filepath.Join(t.TempDir(), "hacks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	_, err = idx.StoreHacks(context.Background(), []core.Hack{
		{ID: "billy-desk", Title: "BILLY standing desk", URL: "https://example.com/1", Date: "2023-05-01", Categories: []string{"Home Office"}},
		{ID: "hemnes-desk", Title: "HEMNES desk makeover", URL: "https://example.com/2", Date: "2024-03-02", Categories: []string{"Home Office"}},
		{ID: "lack-lamp", Title: "LACK lamp", URL: "https://example.com/3", Date: "2024-01-10", Categories: []string{"Lighting"}},
	})
	require.NoError(t, err)

	ts := httptest.NewServer(api.NewServer(idx).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientAgainstServer(t *testing.T) {
	ts := newTestServer(t)
	c, err := New(ts.URL+"/", time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	page, err := c.SearchByText(ctx, "desk", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Results, 1)

	page, err = c.SearchByCategory(ctx, "home office", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "hemnes-desk", page.Results[0].ID)

	cats, err := c.TopCategories(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, cats)
	assert.Equal(t, core.CategoryCount{Name: "Home Office", Count: 2}, cats[0])

	similar, err := c.Similar(ctx, "billy-desk", 0)
	require.NoError(t, err)
	require.NotEmpty(t, similar)
	assert.Equal(t, "hemnes-desk", similar[0].ID)

	h, err := c.Get(ctx, "lack-lamp")
	require.NoError(t, err)
	assert.Equal(t, "LACK lamp", h.Title)

	_, err = c.Get(ctx, "missing")
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestClientDrivesController(t *testing.T) {
	ts := newTestServer(t)
	c, err := New(ts.URL, 0)
	require.NoError(t, err)

	ctrl := search.NewController(c, search.WithPageSize(1))
	req, err := ctrl.SubmitTextQuery("desk")
	require.NoError(t, err)
	require.True(t, ctrl.Run(context.Background(), req))

	st := ctrl.State()
	assert.Equal(t, 2, st.TotalPages)
	assert.Len(t, st.Results, 1)
	assert.NoError(t, st.Err)
}

func TestControllerSurfacesClientErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	c, err := New(ts.URL, time.Second)
	require.NoError(t, err)
	ctrl := search.NewController(c)

	req, err := ctrl.SubmitTextQuery("desk")
	require.NoError(t, err)
	require.True(t, ctrl.Run(context.Background(), req))

	var apiErr *APIError
	require.ErrorAs(t, ctrl.State().Err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)

	ts.Close()
	req = ctrl.Refresh()
	require.NotNil(t, req)
	require.True(t, ctrl.Run(context.Background(), req))

	st := ctrl.State()
	var fetchErr *search.FetchError
	require.ErrorAs(t, st.Err, &fetchErr)
	var urlErr *url.Error
	assert.ErrorAs(t, st.Err, &urlErr, "transport failures reach the caller unchanged")
	assert.ErrorAs(t, fetchErr.Err, &urlErr)
}

func TestClientErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "boom":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Search failed","message":"disk on fire"}`))
		case "garbage":
			_, _ = w.Write([]byte(`<html>`))
		case "slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"total":0,"hits":[]}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer ts.Close()

	c, err := New(ts.URL, 50*time.Millisecond)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.SearchByText(ctx, "boom", 1, 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "disk on fire", apiErr.Message)

	_, err = c.SearchByText(ctx, "other", 1, 10)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)

	_, err = c.SearchByText(ctx, "garbage", 1, 10)
	assert.ErrorIs(t, err, search.ErrMalformedResponse)

	_, err = c.SearchByText(ctx, "slow", 1, 10)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, search.ErrMalformedResponse))
}

func TestNewValidatesURL(t *testing.T) {
	_, err := New("ftp://example.com", 0)
	assert.Error(t, err)
	_, err = New("://bad", 0)
	assert.Error(t, err)
}
