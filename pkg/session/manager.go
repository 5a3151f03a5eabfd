// Package session keeps a local index of every remote browser profile,
// rebuilt by paging through the profile list, together with the open/closed
// status this client has observed for each one.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

// ErrNotFound is returned for identifiers that are not in the cache
var ErrNotFound = errors.New("session not found")

// Backend is the part of the transport the synchronizer depends on.
// *client.Client implements it.
type Backend interface {
	ListBrowsers(ctx context.Context, req models.ListRequest) (models.ProfileList, error)
	BrowserDetail(ctx context.Context, id string) (models.Profile, error)
	OpenBrowser(ctx context.Context, req models.OpenRequest) (models.OpenResult, error)
	CloseBrowser(ctx context.Context, id string) error
}

// Result describes one synchronization run
type Result struct {
	Pages     int  `json:"pages"`
	Inserted  int  `json:"inserted"`
	Total     int  `json:"total"`
	Truncated bool `json:"truncated"`
}

// Manager owns the session cache. It is the only writer; readers get copies.
type Manager struct {
	backend  Backend
	pageSize int
	logger   logrus.FieldLogger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*models.Session

	// serializes Synchronize runs
	syncMu sync.Mutex
}

// NewManager creates a session manager paging with pageSize (the transport
// default when <= 0). A nil logger discards output.
func NewManager(backend Backend, pageSize int, logger logrus.FieldLogger) *Manager {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Manager{
		backend:  backend,
		pageSize: pageSize,
		logger:   logger.WithField("component", "session-sync"),
		now:      time.Now,
		sessions: make(map[string]*models.Session),
	}
}

// Synchronize pages through the remote profile list and inserts a closed
// session for every identifier not cached yet. Known sessions are left alone
// so locally tracked status survives. The run stops once the distinct records
// seen in this run reach the reported total, on the first empty page, or after
// ceil(total/pageSize)+1 pages, whichever comes first. Replayed pages do not
// count twice, and cached sessions count as seen. Stopping on an empty page or
// on the page cap before the total was seen marks the result truncated; that
// is not an error. A transport failure aborts the run; sessions merged from
// earlier pages stay cached.
func (m *Manager) Synchronize(ctx context.Context) (Result, error) {
	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	var res Result
	// ids seen in this run; records without an id count once each
	seen := make(map[string]struct{})
	anonymous := 0
	largest := 0
	for page := 0; ; page++ {
		list, err := m.backend.ListBrowsers(ctx, models.ListRequest{Page: page, PageSize: m.pageSize})
		if err != nil {
			return res, fmt.Errorf("failed to list page %d: %w", page, err)
		}
		res.Pages++
		res.Total = list.TotalNum

		if len(list.List) == 0 {
			if len(seen)+anonymous < list.TotalNum {
				res.Truncated = true
				m.logger.WithFields(logrus.Fields{
					"page":     page,
					"observed": len(seen) + anonymous,
					"total":    list.TotalNum,
				}).Warn("Profile list ended before the reported total")
			}
			break
		}

		for _, p := range list.List {
			if p.ID == "" {
				anonymous++
				continue
			}
			seen[p.ID] = struct{}{}
		}
		res.Inserted += m.merge(list.List)
		largest = max(largest, len(list.List))

		observed := len(seen) + anonymous
		if observed >= list.TotalNum {
			break
		}
		if res.Pages >= maxPages(list.TotalNum, m.pageSize, largest) {
			res.Truncated = true
			m.logger.WithFields(logrus.Fields{
				"pages":    res.Pages,
				"observed": observed,
				"total":    list.TotalNum,
			}).Warn("Page limit reached before the reported total")
			break
		}
	}

	m.logger.WithFields(logrus.Fields{
		"pages":     res.Pages,
		"inserted":  res.Inserted,
		"total":     res.Total,
		"truncated": res.Truncated,
	}).Info("Session cache synchronized")

	return res, nil
}

// maxPages bounds a run. Without a configured page size the largest page
// served so far stands in for it.
func maxPages(total, pageSize, largest int) int {
	if pageSize <= 0 {
		pageSize = largest
	}
	return (total+pageSize-1)/pageSize + 1
}

// merge inserts the profiles that are not cached yet and returns how many
func (m *Manager) merge(profiles []models.Profile) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, p := range profiles {
		if p.ID == "" {
			m.logger.WithField("seq", p.Seq).Warn("Skipping profile without id")
			continue
		}
		if _, exists := m.sessions[p.ID]; exists {
			continue
		}
		m.sessions[p.ID] = &models.Session{
			ID:       p.ID,
			Status:   models.StatusClosed,
			Profile:  p,
			SyncedAt: now,
		}
		inserted++
	}
	return inserted
}

// GetSession returns a copy of the cached session. It never contacts the
// service; use Refresh for that.
func (m *Manager) GetSession(id string) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	return clone(s), nil
}

// Sessions returns copies of the cached sessions ordered by sequence number,
// optionally filtered by status.
func (m *Manager) Sessions(status models.SessionStatus) []models.Session {
	m.mu.RLock()
	sessions := make([]models.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if status != "" && s.Status != status {
			continue
		}
		sessions = append(sessions, clone(s))
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Profile.Seq != sessions[j].Profile.Seq {
			return sessions[i].Profile.Seq < sessions[j].Profile.Seq
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions
}

// Len is the number of cached sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Refresh fetches one profile and merges it: the profile data is replaced,
// status and endpoints are kept. Unknown profiles are inserted closed.
func (m *Manager) Refresh(ctx context.Context, id string) (models.Session, error) {
	if id == "" {
		return models.Session{}, errors.New("id is required")
	}
	p, err := m.backend.BrowserDetail(ctx, id)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to fetch profile %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &models.Session{ID: id, Status: models.StatusClosed}
		m.sessions[id] = s
	}
	s.Profile = p
	s.SyncedAt = m.now()
	return clone(s), nil
}

// Open launches the profile and marks its session open with the returned
// endpoints. The session is inserted if the cache did not know it yet.
func (m *Manager) Open(ctx context.Context, id string, args []string) (models.Session, error) {
	if id == "" {
		return models.Session{}, errors.New("id is required")
	}
	res, err := m.backend.OpenBrowser(ctx, models.OpenRequest{ID: id, Args: args})
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to open profile %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &models.Session{ID: id, Profile: models.Profile{ID: id}}
		m.sessions[id] = s
	}
	s.Status = models.StatusOpen
	s.WS = res.WS
	s.HTTP = res.HTTP
	s.OpenedAt = m.now()
	if res.Seq.Valid && s.Profile.Seq == 0 {
		s.Profile.Seq = int(res.Seq.Int64)
	}
	if res.Name.Valid && s.Profile.Name == "" {
		s.Profile.Name = res.Name.String
	}

	m.logger.WithField("id", id).Debug("Session opened")
	return clone(s), nil
}

// Close closes the profile and marks its session closed
func (m *Manager) Close(ctx context.Context, id string) (models.Session, error) {
	if id == "" {
		return models.Session{}, errors.New("id is required")
	}
	if err := m.backend.CloseBrowser(ctx, id); err != nil {
		return models.Session{}, fmt.Errorf("failed to close profile %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		s = &models.Session{ID: id, Profile: models.Profile{ID: id}}
		m.sessions[id] = s
	}
	s.Status = models.StatusClosed
	s.WS = ""
	s.HTTP = ""
	s.OpenedAt = time.Time{}

	m.logger.WithField("id", id).Debug("Session closed")
	return clone(s), nil
}

func clone(s *models.Session) models.Session {
	c := *s
	if s.Profile.BrowserFingerPrint != nil {
		c.Profile.BrowserFingerPrint = append([]byte(nil), s.Profile.BrowserFingerPrint...)
	}
	return c
}
