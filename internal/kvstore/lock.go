package kvstore

import (
	"fmt"
	"os"
	"time"
)

var (
	lockTimeout = 5 * time.Second
	lockRetry   = 25 * time.Millisecond
)

// dirLock is a directory-based inter-process lock. Creating the directory
// acquires it, removing it releases it.
type dirLock struct {
	dir string
}

func newDirLock(dir string) *dirLock {
	return &dirLock{dir: dir}
}

// acquire retries until the lock directory can be created or the timeout elapses.
func (l *dirLock) acquire() error {
	start := time.Now()
	for {
		err := os.Mkdir(l.dir, 0o700)
		if err == nil {
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("create lock directory: %w", err)
		}
		if time.Since(start) > lockTimeout {
			return fmt.Errorf("lock %s still held after %s", l.dir, lockTimeout)
		}
		time.Sleep(lockRetry)
	}
}

func (l *dirLock) release() error {
	return os.Remove(l.dir)
}

// withLock executes fn while holding the lock at dir.
func withLock(dir string, fn func() error) error {
	lock := newDirLock(dir)
	if err := lock.acquire(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer lock.release()
	return fn()
}
