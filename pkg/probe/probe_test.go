package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/stats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}).Methods(http.MethodGet)
	r.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func closedServerURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL
}

func TestGet(t *testing.T) {
	srv := newAPI(t)
	p := New(srv.URL+"/", time.Second)

	assert.Equal(t, srv.URL, p.BaseURL())

	status, err := p.Get(context.Background(), "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	status, err = p.Get(context.Background(), "api/admin/stats")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, err = p.Get(context.Background(), "/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetConnectionRefused(t *testing.T) {
	p := New(closedServerURL(), time.Second)

	_, err := p.Get(context.Background(), "/health")
	require.Error(t, err)
	assert.True(t, IsConnRefused(err))
}

func TestGetTimeout(t *testing.T) {
	srv := newAPI(t)
	p := New(srv.URL, 50*time.Millisecond)

	_, err := p.Get(context.Background(), "/slow")
	require.Error(t, err)
	assert.False(t, IsConnRefused(err))
}

func TestIsConnRefused(t *testing.T) {
	assert.False(t, IsConnRefused(nil))
	assert.False(t, IsConnRefused(errors.New("boom")))
	assert.False(t, IsConnRefused(context.DeadlineExceeded))
}

func TestWaitReady(t *testing.T) {
	srv := newAPI(t)
	p := New(srv.URL, time.Second)

	err := p.WaitReady(context.Background(), "/health", 3, time.Millisecond, nil)
	assert.NoError(t, err)
}

func TestWaitReadyExhausted(t *testing.T) {
	p := New(closedServerURL(), time.Second)

	var attempts []int
	err := p.WaitReady(context.Background(), "/health", 3, time.Millisecond, func(attempt, status int, err error) {
		attempts = append(attempts, attempt)
		assert.Error(t, err)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready after 3 attempts")
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestWaitReadyNotReadyStatus(t *testing.T) {
	srv := newAPI(t)
	p := New(srv.URL, time.Second)

	var statuses []int
	err := p.WaitReady(context.Background(), "/api/admin/stats", 2, time.Millisecond, func(_, status int, _ error) {
		statuses = append(statuses, status)
	})
	require.Error(t, err)
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized}, statuses)
}

func TestWaitReadyCancelled(t *testing.T) {
	p := New(closedServerURL(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.WaitReady(ctx, "/health", 5, time.Hour, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
