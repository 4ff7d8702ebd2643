package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(retries int) *Client {
	return NewClient(Options{
		Timeout:    2 * time.Second,
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
	})
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("date"))
		assert.Equal(t, "1", r.URL.Query().Get("sportId"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	params := url.Values{"date": {"2024-06-01"}, "sportId": {"1"}}
	err := testClient(0).GetJSON(context.Background(), "schedule", srv.URL, params, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Name)
}

func TestClient_RetriesRetryableStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("fine"))
	}))
	defer srv.Close()

	body, err := testClient(3).Get(context.Background(), "test", srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "fine", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryAuthFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key"))
	}))
	defer srv.Close()

	_, err := testClient(3).Get(context.Background(), "test", srv.URL, url.Values{"appid": {"secret"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.NotContains(t, statusErr.URL, "secret")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(2).Get(context.Background(), "test", srv.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStatus))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload["content"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := testClient(0).PostJSON(context.Background(), "webhook", srv.URL, map[string]string{"content": "hello"})
	require.NoError(t, err)
}

func TestClient_RequestDelay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: time.Second, RequestDelay: 50 * time.Millisecond})
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), "test", srv.URL, nil)
		require.NoError(t, err)
	}
	// First request passes immediately, the next two wait one delay each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(3).Get(ctx, "test", srv.URL, nil)
	require.Error(t, err)
}

func TestClient_TransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(300 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(Options{Timeout: 50 * time.Millisecond, RetryDelay: time.Millisecond})
	_, err := c.Get(context.Background(), "weather", srv.URL+"/weather", url.Values{"appid": {"secret"}, "q": {"Boston"}})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "REDACTED")

	var ue *url.Error
	require.True(t, errors.As(err, &ue))
	assert.NotContains(t, ue.URL, "secret")
}

func TestClient_RefusedConnectionRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := testClient(0).Get(context.Background(), "odds", addr, url.Values{"apiKey": {"secret"}, "api_key": {"secret"}})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}
