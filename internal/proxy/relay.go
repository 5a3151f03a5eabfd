// Package proxy relays DevTools websocket traffic between local clients and
// the browsers BitBrowser has opened.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

// DefaultSlots is the number of concurrent attachments allowed per profile
const DefaultSlots = 4

const dialTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionSource looks up cached sessions. *session.Manager implements it.
type SessionSource interface {
	GetSession(id string) (models.Session, error)
}

// Relay attaches websocket clients to open profiles
type Relay struct {
	sessions SessionSource
	slots    int64
	dialer   *websocket.Dialer
	logger   logrus.FieldLogger

	// guards sems, and orders conns.Add against Close
	mu    sync.Mutex
	sems  map[string]*semaphore.Weighted
	conns sync.WaitGroup

	done      chan struct{}
	closeOnce sync.Once
}

// NewRelay creates a relay allowing slots attachments per profile
// (DefaultSlots when <= 0)
func NewRelay(sessions SessionSource, slots int, logger logrus.FieldLogger) *Relay {
	if slots <= 0 {
		slots = DefaultSlots
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Relay{
		sessions: sessions,
		slots:    int64(slots),
		dialer:   websocket.DefaultDialer,
		logger:   logger.WithField("component", "relay"),
		sems:     make(map[string]*semaphore.Weighted),
		done:     make(chan struct{}),
	}
}

// HandleDebugConnection upgrades the request and pumps frames between it and
// the DevTools endpoint of sessionID until either side closes.
func (r *Relay) HandleDebugConnection(w http.ResponseWriter, req *http.Request, sessionID string) {
	if !r.track() {
		http.Error(w, "Relay is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer r.conns.Done()

	sess, err := r.sessions.GetSession(sessionID)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if sess.Status != models.StatusOpen || sess.WS == "" {
		http.Error(w, "Session is not open", http.StatusConflict)
		return
	}

	if !r.acquireSlot(sessionID) {
		http.Error(w, "Too many debug connections for session", http.StatusTooManyRequests)
		return
	}
	defer r.releaseSlot(sessionID)

	logger := r.logger.WithField("session", sessionID)

	ctx, cancel := context.WithTimeout(req.Context(), dialTimeout)
	browserConn, _, err := r.dialer.DialContext(ctx, sess.WS, nil)
	cancel()
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to browser")
		http.Error(w, fmt.Sprintf("Failed to connect to browser: %v", err), http.StatusBadGateway)
		return
	}
	defer browserConn.Close()

	clientConn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}
	defer clientConn.Close()

	logger.Info("Client attached")

	errChan := make(chan error, 2)
	go func() {
		errChan <- pump(clientConn, browserConn)
	}()
	go func() {
		errChan <- pump(browserConn, clientConn)
	}()

	pending := 2
	select {
	case err = <-errChan:
		pending--
	case <-r.done:
	}
	// unblock the pumps
	clientConn.Close()
	browserConn.Close()
	for ; pending > 0; pending-- {
		<-errChan
	}

	if err != nil && !isClosed(err) {
		logger.WithError(err).Warn("Relay error")
	}
	logger.Info("Client detached")
}

// Close detaches every client and waits for the relays to finish.
// Hijacked connections are not covered by http.Server.Shutdown.
func (r *Relay) Close() {
	r.mu.Lock()
	r.closeOnce.Do(func() { close(r.done) })
	r.mu.Unlock()
	r.conns.Wait()
}

// track registers a connection unless the relay is closed. The check and the
// Add share r.mu with Close, so no Add races with Wait.
func (r *Relay) track() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
		return false
	default:
	}
	r.conns.Add(1)
	return true
}

func pump(src, dst *websocket.Conn) error {
	for {
		messageType, message, err := src.ReadMessage()
		if err != nil {
			return err
		}
		if err := dst.WriteMessage(messageType, message); err != nil {
			return err
		}
	}
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, websocket.ErrCloseSent) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}

// acquireSlot tries to take an attachment slot for the profile
func (r *Relay) acquireSlot(id string) bool {
	r.mu.Lock()
	sem, ok := r.sems[id]
	if !ok {
		sem = semaphore.NewWeighted(r.slots)
		r.sems[id] = sem
	}
	r.mu.Unlock()

	return sem.TryAcquire(1)
}

func (r *Relay) releaseSlot(id string) {
	r.mu.Lock()
	sem := r.sems[id]
	r.mu.Unlock()

	if sem != nil {
		sem.Release(1)
	}
}
