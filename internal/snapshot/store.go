// Package snapshot persists cookie snapshots of browser profiles so they can
// be restored later, possibly into a different profile.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/models"
)

const fileSuffix = ".json.gz"

// ErrNotFound is returned for unknown snapshot ids
var ErrNotFound = errors.New("snapshot not found")

// CookieSource reads and writes the cookies of a profile
type CookieSource interface {
	GetCookies(ctx context.Context, browserID string) ([]models.Cookie, error)
	SetCookies(ctx context.Context, browserID string, cookies []models.Cookie) error
}

// Store handles snapshot persistence
type Store struct {
	source CookieSource
	dir    string
	logger logrus.FieldLogger

	mu    sync.RWMutex
	index map[string]models.Snapshot
}

// NewStore creates the directory if needed and indexes the snapshots already
// in it. Unreadable files are skipped with a warning.
func NewStore(source CookieSource, dir string, logger logrus.FieldLogger) (*Store, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	s := &Store{
		source: source,
		dir:    dir,
		logger: logger.WithField("component", "snapshot"),
		index:  make(map[string]models.Snapshot),
	}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) rebuild() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read snapshot directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		f, err := s.readFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.logger.WithError(err).WithField("file", e.Name()).Warn("Skipping unreadable snapshot")
			continue
		}
		s.index[f.ID] = f.Snapshot
	}
	s.logger.WithField("count", len(s.index)).Debug("Indexed snapshots")
	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileSuffix)
}

// Capture fetches the cookies of browserID and writes them to a new snapshot
func (s *Store) Capture(ctx context.Context, browserID string) (models.Snapshot, error) {
	if browserID == "" {
		return models.Snapshot{}, errors.New("browser id is required")
	}
	cookies, err := s.source.GetCookies(ctx, browserID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to get cookies: %w", err)
	}

	f := models.SnapshotFile{
		Snapshot: models.Snapshot{
			ID:        uuid.New().String(),
			BrowserID: browserID,
			Count:     len(cookies),
			CreatedAt: time.Now().UTC(),
		},
		Cookies: cookies,
	}
	if err := s.writeFile(f); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to write snapshot: %w", err)
	}

	s.mu.Lock()
	s.index[f.ID] = f.Snapshot
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"snapshot": f.ID, "browser": browserID, "cookies": f.Count}).Info("Captured cookies")
	return f.Snapshot, nil
}

// Restore writes the cookies of snapshot id into browserID. An empty
// browserID restores into the profile the snapshot was taken from.
func (s *Store) Restore(ctx context.Context, id, browserID string) (models.Snapshot, error) {
	f, err := s.Load(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	if browserID == "" {
		browserID = f.BrowserID
	}
	if err := s.source.SetCookies(ctx, browserID, f.Cookies); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to set cookies: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"snapshot": id, "browser": browserID}).Info("Restored cookies")
	return f.Snapshot, nil
}

// Get returns the metadata of a snapshot
func (s *Store) Get(id string) (models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.index[id]
	if !ok {
		return models.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// Load reads a snapshot including its cookies
func (s *Store) Load(id string) (models.SnapshotFile, error) {
	if _, err := s.Get(id); err != nil {
		return models.SnapshotFile{}, err
	}
	f, err := s.readFile(s.path(id))
	if err != nil {
		return models.SnapshotFile{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return f, nil
}

// List returns snapshots newest first, optionally only those of browserID
func (s *Store) List(browserID string) []models.Snapshot {
	s.mu.RLock()
	out := make([]models.Snapshot, 0, len(s.index))
	for _, snap := range s.index {
		if browserID == "" || snap.BrowserID == browserID {
			out = append(out, snap)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes a snapshot and its file
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return ErrNotFound
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot data: %w", err)
	}
	delete(s.index, id)
	return nil
}

// writeFile goes through a temp file so a crash never leaves a torn snapshot
func (s *Store) writeFile(f models.SnapshotFile) error {
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	gz := gzip.NewWriter(tmp)
	if err := json.NewEncoder(gz).Encode(f); err != nil {
		tmp.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(f.ID))
}

func (s *Store) readFile(path string) (models.SnapshotFile, error) {
	var f models.SnapshotFile

	file, err := os.Open(path)
	if err != nil {
		return f, err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return f, err
	}
	defer gz.Close()

	if err := json.NewDecoder(gz).Decode(&f); err != nil {
		return f, err
	}
	if f.ID == "" {
		return f, errors.New("snapshot without id")
	}
	return f, nil
}
