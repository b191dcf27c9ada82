//go:build unix

package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sys/unix"
)

const lockRetryInterval = 25 * time.Millisecond

// lockFile takes an exclusive advisory lock on path, creating it if needed.
// It gives up with errLockTimeout when another process holds the lock for
// longer than timeout.
func lockFile(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	attempts := uint(timeout/lockRetryInterval) + 1
	err = retry.Do(
		func() error {
			return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(lockRetryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, unix.EWOULDBLOCK)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		f.Close() //nolint:errcheck
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w after %s", errLockTimeout, timeout)
		}
		return nil, err
	}

	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN) //nolint:errcheck
		f.Close()                             //nolint:errcheck
	}, nil
}
