package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrLocked indicates another process kept the journal lock for longer than
// the lock timeout.
var ErrLocked = errors.New("journal is locked by another process")

// LockTimeout bounds how long Open waits for the schema lock.
var LockTimeout = 2 * time.Second

type fileLock struct {
	file *os.File
}

// acquireLock takes an exclusive lock on path, retrying while another process
// holds it.
func acquireLock(path string) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal lock: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = LockTimeout

	err = backoff.Retry(func() error {
		err := lockFileExclusiveNonBlocking(f)
		if err == nil || isWouldBlockError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, bo)
	if err != nil {
		f.Close()
		if isWouldBlockError(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to acquire journal lock: %w", err)
	}
	return &fileLock{file: f}, nil
}

func (l *fileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
