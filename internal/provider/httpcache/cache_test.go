package httpcache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteofuse/meteofuse/internal/provider/httpcache"
)

func newCache(doer httpcache.Doer) *httpcache.Cache {
	return httpcache.New(httpcache.Config{
		Doer:   doer,
		Logger: zerolog.Nop(),
	})
}

func TestCache_HitAfterMiss(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cache := newCache(http.DefaultClient)

	first, err := cache.Get(context.Background(), server.URL+"/weather?q=London", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(first.Body))

	second, err := cache.Get(context.Background(), server.URL+"/weather?q=London", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int32(1), calls.Load(), "second call must be served from cache")
}

func TestCache_DistinctURLsDistinctEntries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(r.URL.RawQuery))
	}))
	defer server.Close()

	cache := newCache(http.DefaultClient)

	first, err := cache.Get(context.Background(), server.URL+"/weather?q=London", time.Minute)
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), server.URL+"/weather?q=Paris", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "q=London", string(first.Body))
	assert.Equal(t, "q=Paris", string(second.Body))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, cache.Len())
}

func TestCache_ExpiredEntryRefetched(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`x`))
	}))
	defer server.Close()

	cache := newCache(http.DefaultClient)

	_, err := cache.Get(context.Background(), server.URL, 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = cache.Get(context.Background(), server.URL, 10*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_ErrorStatusNotCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer server.Close()

	cache := newCache(http.DefaultClient)

	for i := 0; i < 2; i++ {
		resp, err := cache.Get(context.Background(), server.URL, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(resp.Body), "city not found")
	}

	assert.Equal(t, int32(2), calls.Load(), "error responses must not be cached")
	assert.Equal(t, 0, cache.Len())
}

func TestCache_FetchSurvivesCallerCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cache := newCache(http.DefaultClient)

	// The fetch is shared across collapsed callers, so one caller's
	// cancellation must not poison it for the others.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := cache.Get(ctx, server.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, cache.Len())
}
