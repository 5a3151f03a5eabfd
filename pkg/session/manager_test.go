package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/shehryarbajwa/bitbrowser-go/internal/testutils"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/client"
	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

var _ Backend = (*client.Client)(nil)

type fakeBackend struct {
	mu       sync.Mutex
	profiles []models.Profile
	total    int
	// serve maps the n-th list call to the page actually served; calls past
	// its end are served as requested.
	serve []int
	// clamp serves pages past lastPage as lastPage, as some services do
	clamp       bool
	lastPage    int
	listErr     map[int]error
	pageCalls   []int
	detailCalls int
	openErr     error
	details     map[string]models.Profile
}

func newFakeBackend(n int) *fakeBackend {
	f := &fakeBackend{total: n, details: map[string]models.Profile{}}
	for i := 0; i < n; i++ {
		f.profiles = append(f.profiles, models.Profile{
			ID:   fmt.Sprintf("p-%02d", i),
			Seq:  i + 1,
			Name: fmt.Sprintf("profile %d", i),
		})
	}
	return f
}

func (f *fakeBackend) ListBrowsers(_ context.Context, req models.ListRequest) (models.ProfileList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := len(f.pageCalls)
	f.pageCalls = append(f.pageCalls, req.Page)
	if err := f.listErr[req.Page]; err != nil {
		return models.ProfileList{}, err
	}

	page := req.Page
	if call < len(f.serve) {
		page = f.serve[call]
	}
	if f.clamp && page > f.lastPage {
		page = f.lastPage
	}
	start := page * req.PageSize
	end := start + req.PageSize
	if start > len(f.profiles) {
		start = len(f.profiles)
	}
	if end > len(f.profiles) {
		end = len(f.profiles)
	}
	return models.ProfileList{
		TotalNum: f.total,
		List:     append([]models.Profile(nil), f.profiles[start:end]...),
	}, nil
}

func (f *fakeBackend) BrowserDetail(_ context.Context, id string) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	p, ok := f.details[id]
	if !ok {
		return models.Profile{}, &client.APIError{Endpoint: "/browser/detail", Message: "not found"}
	}
	return p, nil
}

func (f *fakeBackend) OpenBrowser(_ context.Context, req models.OpenRequest) (models.OpenResult, error) {
	if f.openErr != nil {
		return models.OpenResult{}, f.openErr
	}
	return models.OpenResult{
		WS:   "ws://127.0.0.1:9222/devtools/browser/" + req.ID,
		HTTP: "127.0.0.1:9222",
		Seq:  null.IntFrom(99),
	}, nil
}

func (f *fakeBackend) CloseBrowser(_ context.Context, _ string) error {
	return nil
}

func newTestManager(t *testing.T, backend Backend) *Manager {
	return NewManager(backend, 10, testutils.NewLogger(t))
}

func TestSynchronizePagination(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(25)
	m := newTestManager(t, backend)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, backend.pageCalls)
	assert.Equal(t, Result{Pages: 3, Inserted: 25, Total: 25}, res)
	assert.Equal(t, 25, m.Len())
	for _, s := range m.Sessions("") {
		assert.Equal(t, models.StatusClosed, s.Status, s.ID)
		assert.Equal(t, s.ID, s.Profile.ID)
	}
}

func TestSynchronizeIdempotent(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(25)
	m := newTestManager(t, backend)

	_, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	first := m.Sessions("")
	require.Len(t, first, 25)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.False(t, res.Truncated)
	assert.Equal(t, first, m.Sessions(""))
}

func TestSynchronizeKeepsStatus(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(12)
	m := newTestManager(t, backend)

	_, err := m.Synchronize(context.Background())
	require.NoError(t, err)

	opened, err := m.Open(context.Background(), "p-03", nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusOpen, opened.Status)

	_, err = m.Synchronize(context.Background())
	require.NoError(t, err)

	s, err := m.GetSession("p-03")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, s.Status)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/p-03", s.WS)
	assert.Len(t, m.Sessions(models.StatusOpen), 1)
	assert.Len(t, m.Sessions(models.StatusClosed), 11)
}

func TestSynchronizeReplayedPage(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(25)
	// the second page is served twice before the cursor moves on
	backend.serve = []int{0, 1, 1, 2}
	m := newTestManager(t, backend)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)

	assert.Len(t, backend.pageCalls, 4)
	assert.Equal(t, 25, res.Inserted)
	assert.Equal(t, 25, m.Len())

	ids := map[string]bool{}
	for _, s := range m.Sessions("") {
		assert.False(t, ids[s.ID], "duplicate %s", s.ID)
		ids[s.ID] = true
	}
}

func TestSynchronizeReplayDoesNotOverwrite(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(20)
	backend.serve = []int{0, 0, 1}
	m := newTestManager(t, backend)

	// p-04 is known and open before the run
	_, err := m.Open(context.Background(), "p-04", nil)
	require.NoError(t, err)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19, res.Inserted)

	s, err := m.GetSession("p-04")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, s.Status)
	assert.Equal(t, 20, m.Len())
}

func TestSynchronizeTruncated(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(25)
	backend.total = 50
	m := newTestManager(t, backend)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, backend.pageCalls)
	assert.True(t, res.Truncated)
	assert.Equal(t, 50, res.Total)
	assert.Equal(t, 25, m.Len())
}

func TestSynchronizeClampedPages(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(25)
	backend.clamp, backend.lastPage = true, 2
	m := newTestManager(t, backend)

	_, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, backend.pageCalls)

	// every record is cached already, so nothing new is inserted
	backend.pageCalls = nil
	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, backend.pageCalls)
	assert.Equal(t, Result{Pages: 3, Total: 25}, res)
	assert.Equal(t, 25, m.Len())
}

func TestSynchronizePageLimit(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(25)
	backend.total = 50
	backend.clamp, backend.lastPage = true, 2
	m := newTestManager(t, backend)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)

	// ceil(50/10)+1 pages, then give up
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, backend.pageCalls)
	assert.True(t, res.Truncated)
	assert.Equal(t, 25, res.Inserted)
	assert.Equal(t, 25, m.Len())

	res, err = m.Synchronize(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 6, res.Pages)
}

func TestSynchronizeEmptyRemote(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(0)
	m := newTestManager(t, backend)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Pages: 1}, res)
	assert.Zero(t, m.Len())
}

func TestSynchronizeError(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(25)
	boom := &client.HTTPStatusError{Endpoint: "/browser/list", StatusCode: 502}
	backend.listErr = map[int]error{1: boom}
	m := newTestManager(t, backend)

	res, err := m.Synchronize(context.Background())
	require.Error(t, err)

	var statusErr *client.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 502, statusErr.StatusCode)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 10, m.Len())
}

func TestSynchronizeSkipsMissingID(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(3)
	backend.profiles[1].ID = ""
	backend.total = 3
	m := newTestManager(t, backend)

	res, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, res.Inserted)
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(5)
	m := newTestManager(t, backend)

	_, err := m.GetSession("p-01")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Synchronize(context.Background())
	require.NoError(t, err)

	s, err := m.GetSession("p-01")
	require.NoError(t, err)
	assert.Equal(t, "profile 1", s.Profile.Name)

	_, err = m.GetSession("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, backend.detailCalls)
}

func TestReturnedSessionsAreCopies(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(2)
	backend.profiles[0].BrowserFingerPrint = []byte(`{"coreVersion":"112"}`)
	m := newTestManager(t, backend)
	_, err := m.Synchronize(context.Background())
	require.NoError(t, err)

	s, err := m.GetSession("p-00")
	require.NoError(t, err)
	s.Status = models.StatusOpen
	s.Profile.Name = "changed"
	s.Profile.BrowserFingerPrint[2] = 'X'

	again, err := m.GetSession("p-00")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, again.Status)
	assert.Equal(t, "profile 0", again.Profile.Name)
	assert.Equal(t, "112", again.Profile.CoreVersion())
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(3)
	m := newTestManager(t, backend)
	_, err := m.Synchronize(context.Background())
	require.NoError(t, err)
	_, err = m.Open(context.Background(), "p-01", nil)
	require.NoError(t, err)

	backend.details["p-01"] = models.Profile{ID: "p-01", Seq: 2, Name: "renamed", Remark: "fresh"}
	s, err := m.Refresh(context.Background(), "p-01")
	require.NoError(t, err)
	assert.Equal(t, "renamed", s.Profile.Name)
	assert.Equal(t, models.StatusOpen, s.Status)
	assert.NotEmpty(t, s.WS)

	backend.details["p-77"] = models.Profile{ID: "p-77", Seq: 78, Name: "new"}
	s, err = m.Refresh(context.Background(), "p-77")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, s.Status)
	assert.Equal(t, 4, m.Len())

	_, err = m.Refresh(context.Background(), "gone")
	assert.True(t, client.IsBusinessError(err))
	assert.Equal(t, 4, m.Len())
}

func TestOpenClose(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(1)
	m := newTestManager(t, backend)

	s, err := m.Open(context.Background(), "p-00", []string{"--incognito"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, s.Status)
	assert.Equal(t, "127.0.0.1:9222", s.HTTP)
	assert.Equal(t, 99, s.Profile.Seq)
	assert.False(t, s.OpenedAt.IsZero())

	s, err = m.Close(context.Background(), "p-00")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, s.Status)
	assert.Empty(t, s.WS)
	assert.Empty(t, s.HTTP)
	assert.True(t, s.OpenedAt.IsZero())
}

func TestOpenFailureLeavesCache(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(1)
	backend.openErr = &client.APIError{Endpoint: "/browser/open", Message: "already open"}
	m := newTestManager(t, backend)

	_, err := m.Open(context.Background(), "p-00", nil)
	require.Error(t, err)
	assert.True(t, client.IsBusinessError(err))
	assert.Zero(t, m.Len())
}
