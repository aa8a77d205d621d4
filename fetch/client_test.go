package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/wordbook/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(newTestLogger()), WithRetry(2, time.Millisecond)}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestGet_SendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wordbook-test", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, WithUserAgent("wordbook-test"))
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Empty(t, resp.Location())
}

func TestGet_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, core.ErrNotFound},
		{"forbidden", http.StatusForbidden, core.ErrSourceUnavailable},
		{"server error", http.StatusBadGateway, core.ErrSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(t).Get(context.Background(), srv.URL)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	resp, err := newTestClient(t).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t).Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t).Get(context.Background(), url)
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}

func TestGet_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t).Get(ctx, srv.URL)
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGet_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	_, err := newTestClient(t, WithMaxBodySize(10)).Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.ErrorIs(t, err, core.ErrSourceUnavailable)
}

func TestGet_WithoutRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			http.Redirect(w, r, "/word/猫/#anchor", http.StatusFound)
			return
		}
		w.Write([]byte("entry"))
	}))
	defer srv.Close()

	t.Run("redirect is visible", func(t *testing.T) {
		resp, err := newTestClient(t, WithoutRedirects()).Get(context.Background(), srv.URL+"/search")
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Location(), srv.URL+"/word/"))
	})

	t.Run("redirect is followed by default", func(t *testing.T) {
		resp, err := newTestClient(t).Get(context.Background(), srv.URL+"/search")
		require.NoError(t, err)
		assert.Equal(t, "entry", string(resp.Body))
	})
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.Write([]byte("{not json"))
			return
		}
		w.Write([]byte(`{"word":"猫"}`))
	}))
	defer srv.Close()

	c := newTestClient(t)

	var v struct {
		Word string `json:"word"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/ok", &v))
	assert.Equal(t, "猫", v.Word)

	err := c.GetJSON(context.Background(), srv.URL+"/bad", &v)
	assert.ErrorIs(t, err, core.ErrParseFailure)
}

func TestGetHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/target", http.StatusMovedPermanently)
			return
		}
		w.Write([]byte("<html><body><h1>猫</h1></body></html>"))
	}))
	defer srv.Close()

	c := newTestClient(t, WithoutRedirects())

	doc, resp, err := c.GetHTML(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	doc, resp, err = c.GetHTML(context.Background(), srv.URL+"/redirect")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, srv.URL+"/target", resp.Location())
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithTimeout(0))
	assert.Error(t, err)

	_, err = New(WithMaxBodySize(-1))
	assert.Error(t, err)

	_, err = New(WithRetry(0, time.Second))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
