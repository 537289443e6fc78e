package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const (
	// DefaultLockTimeout bounds how long a writer waits for another process.
	DefaultLockTimeout = 5 * time.Second

	// StaleLockAge is the age after which a lock file is assumed abandoned.
	StaleLockAge = time.Minute

	lockPollInterval = 10 * time.Millisecond
)

// ErrLockTimeout is returned when the lock file could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for store lock")

// fileLock is a cross-process mutex backed by an O_EXCL lock file.
type fileLock struct {
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

func newFileLock(path string, timeout time.Duration, logger *slog.Logger) *fileLock {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &fileLock{path: path, timeout: timeout, logger: logger}
}

// acquire blocks until the lock file is created or the timeout elapses.
// The returned func releases the lock, unless another holder has since
// broken it and written its own token.
func (l *fileLock) acquire(ctx context.Context) (func(), error) {
	token := fmt.Sprintf("%d %s", os.Getpid(), uuid.NewString())
	attempts := uint(l.timeout / lockPollInterval)
	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error { return l.tryCreate(token) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(lockPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, os.ErrExist) }),
		retry.OnRetry(func(attempt uint, err error) {
			if attempt == 0 {
				l.logger.Debug("store lock busy, waiting", "lock", l.path)
			}
		}),
	)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, l.path)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", l.path, err)
	}

	return func() { l.release(token) }, nil
}

func (l *fileLock) release(token string) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		l.logger.Warn("failed to release store lock", "lock", l.path, "error", err)
		return
	}
	if owner := strings.TrimSpace(string(data)); owner != token {
		l.logger.Warn("store lock taken over, leaving it", "lock", l.path, "owner", owner)
		return
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("failed to release store lock", "lock", l.path, "error", err)
	}
}

// tryCreate writes token into a fresh lock file.
func (l *fileLock) tryCreate(token string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		if _, werr := fmt.Fprintln(f, token); werr != nil {
			f.Close()
			_ = os.Remove(l.path)
			return retry.Unrecoverable(werr)
		}
		return f.Close()
	}
	if !errors.Is(err, os.ErrExist) {
		return retry.Unrecoverable(err)
	}

	if info, statErr := os.Stat(l.path); statErr == nil && time.Since(info.ModTime()) > StaleLockAge {
		l.logger.Warn("breaking stale store lock", "lock", l.path, "age", time.Since(info.ModTime()))
		_ = os.Remove(l.path)
	}
	return err
}
