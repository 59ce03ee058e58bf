// Package storage persists collections as whole JSON documents on disk.
//
// Every collection is one file that is read in full on load and replaced in
// full on store. Replacement goes through a temporary file in the same
// directory followed by a rename, so readers never observe a partially
// written document. Mutations of a collection are serialized by a
// per-collection mutex held from load until the matching store completes.
// On the OS filesystem an advisory lock on a sibling ".lock" file is taken as
// well, so separate processes sharing a data directory also serialize.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/ficus/storefront/internal/infrastructure/logger"
)

const defaultFileMode os.FileMode = 0o644

// Store owns the data directory and one mutation lock per collection name.
type Store struct {
	fs      afero.Fs
	dir     string
	mode    os.FileMode
	logger  *logger.Logger
	metrics *Metrics

	fileLocks bool

	mu    sync.Mutex
	locks map[string]*collectionLock
}

// collectionLock serializes mutations of one collection. file is nil when
// file locking is disabled.
type collectionLock struct {
	mu   sync.Mutex
	file *flock.Flock
}

// Option configures a Store
type Option func(*Store)

// WithFs replaces the filesystem, mainly for tests. File locks are only
// taken when fs is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
		_, s.fileLocks = fs.(*afero.OsFs)
	}
}

// WithFileLocking turns the cross-process advisory locks on or off
func WithFileLocking(enabled bool) Option {
	return func(s *Store) {
		s.fileLocks = enabled
	}
}

// WithFileMode sets the permission bits of written collection files
func WithFileMode(mode os.FileMode) Option {
	return func(s *Store) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a store rooted at dir, creating the directory if needed
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		fs:        afero.NewOsFs(),
		dir:       dir,
		mode:      defaultFileMode,
		logger:    logger.NewNop(),
		fileLocks: true,
		locks:     make(map[string]*collectionLock),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageIOError{Path: dir, Op: "mkdir", Err: err}
	}

	s.logger = s.logger.WithComponent("storage")
	return s, nil
}

// Dir returns the data directory
func (s *Store) Dir() string {
	return s.dir
}

// HealthCheck verifies the data directory is writable
func (s *Store) HealthCheck() error {
	f, err := afero.TempFile(s.fs, s.dir, ".healthcheck.*")
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	name := f.Name()
	f.Close()
	return s.fs.Remove(name)
}

// lockFor returns the mutation lock for a collection, creating it on first use.
// Collections registered twice under the same name share one lock.
func (s *Store) lockFor(name, file string) *collectionLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[name]
	if !ok {
		l = &collectionLock{}
		if s.fileLocks {
			l.file = flock.New(filepath.Join(s.dir, "."+file+".lock"))
		}
		s.locks[name] = l
	}
	return l
}

// writeAtomic replaces path with data via a temp file and rename. On any
// failure the temp file is removed and the original file is left untouched.
func (s *Store) writeAtomic(collection, path string, data []byte) error {
	ioErr := func(op string, err error) error {
		return &StorageIOError{Collection: collection, Path: path, Op: op, Err: err}
	}

	tmp, err := afero.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return ioErr("create temp", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.removeTemp(tmpName)
		return ioErr("write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.removeTemp(tmpName)
		return ioErr("sync", err)
	}
	if err := tmp.Close(); err != nil {
		s.removeTemp(tmpName)
		return ioErr("close", err)
	}
	if err := s.fs.Chmod(tmpName, s.mode); err != nil {
		s.removeTemp(tmpName)
		return ioErr("chmod", err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.removeTemp(tmpName)
		return ioErr("rename", err)
	}

	return nil
}

func (s *Store) removeTemp(name string) {
	if err := s.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		s.logger.Warnw("Failed to remove temp file", "path", name, "error", err)
	}
}

func (s *Store) logOperation(collection, op, path string, size int, started time.Time, err error) {
	s.metrics.observe(collection, op, started, err)
	s.logger.LogStorageOperation(collection, op, path, size, time.Since(started), err)
}
