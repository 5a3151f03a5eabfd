package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shehryarbajwa/bitbrowser-go/internal/testutils"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/session"
)

type fakeSessions map[string]models.Session

func (f fakeSessions) GetSession(id string) (models.Session, error) {
	s, ok := f[id]
	if !ok {
		return models.Session{}, session.ErrNotFound
	}
	return s, nil
}

// newBrowser starts a DevTools lookalike: it answers Browser.getVersion and
// echoes every other frame.
func newBrowser(t *testing.T) string {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if strings.Contains(string(msg), "Browser.getVersion") {
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"method":"Target.targetCreated","params":{}}`))
				_ = conn.WriteMessage(websocket.TextMessage, []byte(
					`{"id":1,"result":{"product":"Chrome/112.0.5615.121","protocolVersion":"1.3","userAgent":"Mozilla/5.0","jsVersion":"11.2"}}`))
				continue
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/devtools/browser/abc"
}

func newRelayServer(t *testing.T, sessions fakeSessions, slots int) (string, *Relay) {
	t.Helper()
	relay := NewRelay(sessions, slots, testutils.NewLogger(t))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relay.HandleDebugConnection(w, r, strings.TrimPrefix(r.URL.Path, "/"))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/", relay
}

func TestRelayPumpsFrames(t *testing.T) {
	t.Parallel()

	ws := newBrowser(t)
	base, _ := newRelayServer(t, fakeSessions{
		"p-1": {ID: "p-1", Status: models.StatusOpen, WS: ws},
	}, 0)

	conn, _, err := websocket.DefaultDialer.Dial(base+"p-1", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":7,"method":"Page.enable"}`)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"method":"Page.enable"}`, string(msg))
}

func TestRelayRejects(t *testing.T) {
	t.Parallel()

	base, _ := newRelayServer(t, fakeSessions{
		"closed":  {ID: "closed", Status: models.StatusClosed},
		"no-ws":   {ID: "no-ws", Status: models.StatusOpen},
		"refused": {ID: "refused", Status: models.StatusOpen, WS: "ws://127.0.0.1:1/devtools"},
	}, 0)

	for id, code := range map[string]int{
		"missing": http.StatusNotFound,
		"closed":  http.StatusConflict,
		"no-ws":   http.StatusConflict,
		"refused": http.StatusBadGateway,
	} {
		_, resp, err := websocket.DefaultDialer.Dial(base+id, nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake, id)
		assert.Equal(t, code, resp.StatusCode, id)
		resp.Body.Close()
	}
}

func TestRelaySlots(t *testing.T) {
	t.Parallel()

	ws := newBrowser(t)
	base, _ := newRelayServer(t, fakeSessions{
		"p-1": {ID: "p-1", Status: models.StatusOpen, WS: ws},
	}, 1)

	first, _, err := websocket.DefaultDialer.Dial(base+"p-1", nil)
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(base+"p-1", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, first.Close())

	assert.Eventually(t, func() bool {
		c, resp, err := websocket.DefaultDialer.Dial(base+"p-1", nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			return false
		}
		c.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)
}

func TestProbe(t *testing.T) {
	t.Parallel()

	ws := newBrowser(t)
	v, err := Probe(context.Background(), ws)
	require.NoError(t, err)
	assert.Equal(t, "Chrome/112.0.5615.121", v.Product)
	assert.Equal(t, "1.3", v.ProtocolVersion)
}

func TestProbeErrors(t *testing.T) {
	t.Parallel()

	_, err := Probe(context.Background(), "ws://127.0.0.1:1/devtools")
	assert.Error(t, err)

	// a browser that never answers
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = Probe(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRelayClose(t *testing.T) {
	t.Parallel()

	ws := newBrowser(t)
	base, relay := newRelayServer(t, fakeSessions{
		"p-1": {ID: "p-1", Status: models.StatusOpen, WS: ws},
	}, 0)

	conn, _, err := websocket.DefaultDialer.Dial(base+"p-1", nil)
	require.NoError(t, err)
	defer conn.Close()

	relay.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(base+"p-1", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

func TestRelayCloseWhileConnecting(t *testing.T) {
	t.Parallel()

	relay := NewRelay(fakeSessions{}, 0, testutils.NewLogger(t))

	var wg sync.WaitGroup
	codes := make(chan int, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			relay.HandleDebugConnection(rec, httptest.NewRequest(http.MethodGet, "/p-1", nil), "p-1")
			codes <- rec.Code
		}()
	}
	relay.Close()
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Contains(t, []int{http.StatusNotFound, http.StatusServiceUnavailable}, code)
	}

	rec := httptest.NewRecorder()
	relay.HandleDebugConnection(rec, httptest.NewRequest(http.MethodGet, "/p-1", nil), "p-1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
