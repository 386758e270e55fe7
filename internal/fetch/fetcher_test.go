package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/testudo/seatwatch/internal/obs/retry"
)

func fastFetcher(t *testing.T) (*Fetcher, *Session) {
	t.Helper()
	session := NewSession(2 * time.Second)
	f := NewFetcher(zap.NewNop(), session, "test-agent").
		WithPolicy(retry.Policy{Attempts: 3, Backoff: retry.ExpoJitter{Base: time.Millisecond}})
	return f, session
}

func TestFetch_ExtractsTextAndTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`<html><head><title>Schedule   of Classes</title>
<style>.x{color:red}</style></head>
<body><div>Section  0101</div><script>ignore()</script><p>Seats (Total: 30, Open: 2)</p></body></html>`))
	}))
	defer srv.Close()

	f, session := fastFetcher(t)
	defer session.Close()

	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Schedule of Classes", page.Title)
	assert.Equal(t, "Section 0101 Seats (Total: 30, Open: 2)", page.Text)
	assert.NotContains(t, page.Text, "ignore")
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("<html><body>ok now</body></html>"))
	}))
	defer srv.Close()

	f, session := fastFetcher(t)
	defer session.Close()

	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, "ok now", page.Text)
}

func TestFetch_FailsAfterExhaustion(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f, session := fastFetcher(t)
	defer session.Close()

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.EqualValues(t, 3, hits.Load())
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.edu", normalizeURL(" example.edu "))
	assert.Equal(t, "http://example.edu", normalizeURL("http://example.edu"))
	assert.Equal(t, "", normalizeURL("  "))
}

func TestSession_CloseIdempotent(t *testing.T) {
	s := NewSession(time.Second)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
