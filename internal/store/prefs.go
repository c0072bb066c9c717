package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"postline/internal/domain"
)

// Prefs are the persisted user preferences consulted at draft time.
type Prefs struct {
	DefaultTone domain.Tone `json:"default_tone,omitempty"`
}

func (s *Store) prefsPath() string { return filepath.Join(s.dir, prefsFile) }

// LoadPrefs reads user preferences, returning zero prefs when none are stored.
func (s *Store) LoadPrefs(ctx context.Context) (Prefs, error) {
	var p Prefs
	err := s.withPrefsLock(ctx, false, func() error {
		data, err := os.ReadFile(s.prefsPath())
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return domain.WrapError(domain.KindStorageCorrupted, err,
				"preferences file %s is unreadable", s.prefsPath())
		}
		return nil
	})
	return p, err
}

// SavePrefs persists user preferences atomically.
func (s *Store) SavePrefs(ctx context.Context, p Prefs) error {
	return s.withPrefsLock(ctx, true, func() error {
		return s.writeFileAtomic(s.prefsPath(), p)
	})
}

func (s *Store) withPrefsLock(ctx context.Context, exclusive bool, fn func() error) error {
	lock := flock.New(s.prefsPath() + ".lock")
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
			"could not lock %s within %s", s.prefsPath(), s.lockWait())
	}
	defer lock.Unlock()
	return fn()
}
