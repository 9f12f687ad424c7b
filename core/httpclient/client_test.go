package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"cern-sync/core/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(attempts int) *httpclient.Client {
	return httpclient.New(httpclient.Config{
		Attempts:     attempts,
		DelaySeconds: 0,
	})
}

func TestGetRetriesUntilSuccess(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newTestClient(3)
	data, err := client.Get(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetFailsAfterExhaustion(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(3)
	_, err := client.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	var reqErr *httpclient.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, srv.URL, reqErr.URL)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := newTestClient(1)
	_, err := client.Get(context.Background(), srv.URL, map[string]string{
		"Authorization": "Bearer token-123",
	})
	require.NoError(t, err)
}

func TestPostFormEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := newTestClient(1)
	_, err := client.PostForm(context.Background(), srv.URL, url.Values{
		"grant_type": {"client_credentials"},
	}, nil)
	require.NoError(t, err)
}

func TestCancelledContextStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := httpclient.New(httpclient.Config{Attempts: 3, DelaySeconds: 1})
	_, err := client.Get(ctx, srv.URL, nil)
	require.Error(t, err)
}
