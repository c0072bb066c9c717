// Package store persists the post collection as a single JSON file guarded by
// an advisory file lock. The whole collection is the unit of read/write; every
// mutation is a load-modify-persist cycle under an exclusive lock, and writes
// go to a temp file renamed over the durable one so readers never observe a
// partial write.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"postline/internal/domain"
)

const (
	workspaceDir = ".postline"
	postsFile    = "posts.json"
	prefsFile    = "config.json"

	// DefaultLockWait bounds how long a writer blocks on the advisory lock
	// before the caller gets a retryable lock_timeout error.
	DefaultLockWait = 5 * time.Second

	lockRetryDelay = 25 * time.Millisecond
)

// Store owns the workspace files.
type Store struct {
	dir      string
	LockWait time.Duration
}

// Open ensures the workspace directory exists and returns a Store for it.
func Open(workspace string) (*Store, error) {
	dir, err := EnsureWorkspace(workspace)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, LockWait: DefaultLockWait}, nil
}

// EnsureWorkspace creates the workspace directory if missing.
func EnsureWorkspace(workspace string) (string, error) {
	if workspace == "" {
		workspace = "."
	}
	dir := filepath.Join(workspace, workspaceDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Dir returns the workspace data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) postsPath() string { return filepath.Join(s.dir, postsFile) }

func (s *Store) lockWait() time.Duration {
	if s.LockWait > 0 {
		return s.LockWait
	}
	return DefaultLockWait
}

// LoadPosts reads the full collection under a shared lock.
func (s *Store) LoadPosts(ctx context.Context) (Collection, error) {
	var col Collection
	err := s.withLock(ctx, false, func() error {
		var err error
		col, err = s.readCollection()
		return err
	})
	return col, err
}

// MutatePosts runs fn over the collection under an exclusive lock and
// atomically persists the result. If fn fails nothing is written.
func (s *Store) MutatePosts(ctx context.Context, fn func(Collection) error) error {
	return s.withLock(ctx, true, func() error {
		col, err := s.readCollection()
		if err != nil {
			return err
		}
		if err := fn(col); err != nil {
			return err
		}
		return s.writeFileAtomic(s.postsPath(), col)
	})
}

func (s *Store) readCollection() (Collection, error) {
	data, err := os.ReadFile(s.postsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Collection{}, nil
		}
		return Collection{}, err
	}
	var col Collection
	if err := json.Unmarshal(data, &col); err != nil {
		// Never overwrite an unreadable collection; surface it instead.
		return Collection{}, domain.WrapError(domain.KindStorageCorrupted, err,
			"post collection %s is unreadable", s.postsPath())
	}
	return col, nil
}

// withLock acquires the advisory lock (exclusive or shared) with a bounded
// wait, runs fn, and releases on all exit paths. The lock lives on a sidecar
// file so the rename-replace of the data file does not invalidate it.
func (s *Store) withLock(ctx context.Context, exclusive bool, fn func() error) error {
	lock := flock.New(s.postsPath() + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait())
	defer cancel()

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		ok, err = lock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil && !isDeadline(err) {
		return err
	}
	if !ok {
		return domain.Errorf(domain.KindLockTimeout,
			"could not lock %s within %s", s.postsPath(), s.lockWait())
	}
	defer lock.Unlock()
	return fn()
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// writeFileAtomic writes v as indented JSON to a temp file in the same
// directory, fsyncs, then renames over path.
func (s *Store) writeFileAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
