package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionURL(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"127.0.0.1:9222":         "http://127.0.0.1:9222/json/version",
		"http://127.0.0.1:9222/": "http://127.0.0.1:9222/json/version",
		"https://host:1":         "https://host:1/json/version",
	} {
		assert.Equal(t, want, VersionURL(in), in)
	}
}

func TestWaitReady(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/version", r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"Browser":"Chrome/112.0.5615.121","Protocol-Version":"1.3","webSocketDebuggerUrl":"ws://127.0.0.1/devtools/browser/x"}`)
	}))
	defer srv.Close()

	info, err := WaitReady(context.Background(), srv.Client(), strings.TrimPrefix(srv.URL, "http://"), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "Chrome/112.0.5615.121", info.Browser)
	assert.Equal(t, "1.3", info.ProtocolVersion)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitReadyTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := WaitReady(ctx, srv.Client(), srv.URL, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
