package lock

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"syscall"
)

// ErrHeld indicates another deployment currently holds the lock for the
// same target. The caller must not perform any work.
var ErrHeld = errors.New("deployment lock is held by another process")

// Lock is an exclusive flock-based deployment lock. It is held for the
// whole Idle-to-Reaping transition so two deploys can never race on the
// same proxy file.
type Lock struct {
	path string
	file *os.File
}

// PathFor derives the lockfile path for a deployment target from its proxy
// config path. Distinct proxy files get distinct locks.
func PathFor(dir, proxyConfigPath string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(proxyConfigPath))
	return filepath.Join(dir, fmt.Sprintf("hueshift-%08x.lock", h.Sum32()))
}

// Acquire takes the lock without blocking. A lock held elsewhere returns
// ErrHeld.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lockfile %s: %w", path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", path, ErrHeld)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}

	return &Lock{path: path, file: f}, nil
}

// Path returns the lockfile path.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. The lockfile itself is left in place; only the
// flock matters.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.path, err)
	}
	return closeErr
}
