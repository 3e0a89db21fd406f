// Package storeutil provides the shared durable-storage primitives used by
// every store in the system: advisory file locking and atomic write-then-rename.
package storeutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultLockTimeout is the bounded wait for acquiring a store lock (spec §5).
const DefaultLockTimeout = 10 * time.Second

// DefaultLockPoll is the poll interval while waiting for a lock to free up.
const DefaultLockPoll = 25 * time.Millisecond

// ErrLockTimeout is returned when a lock could not be acquired within the timeout.
var ErrLockTimeout = fmt.Errorf("storeutil: lock acquisition timed out")

// FileLock is an advisory lock implemented via exclusive-create of a sibling
// ".lock" file. The holder's PID is written into the lock file to aid
// diagnosis of stuck locks, matching spec §5.
type FileLock struct {
	path string
	file *os.File
}

// Acquire creates the lock file for path+".lock", retrying with a bounded
// poll until timeout. Returns ErrLockTimeout if the lock is never freed.
func Acquire(path string) (*FileLock, error) {
	return AcquireTimeout(path, DefaultLockTimeout, DefaultLockPoll)
}

// AcquireTimeout is Acquire with an explicit timeout/poll interval.
func AcquireTimeout(path string, timeout, poll time.Duration) (*FileLock, error) {
	lockPath := path + ".lock"

	b := backoff.NewConstantBackOff(poll)
	deadline := time.Now().Add(timeout)

	operation := func() (*os.File, error) {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err != nil {
			if os.IsExist(err) {
				if time.Now().After(deadline) {
					return nil, backoff.Permanent(ErrLockTimeout)
				}
				return nil, err // retryable
			}
			return nil, backoff.Permanent(err)
		}
		fmt.Fprintf(f, "%d\n", os.Getpid())
		return f, nil
	}

	f, err := backoff.Retry(
		context.Background(),
		operation,
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(timeout+time.Second),
	)
	if err != nil {
		if err == ErrLockTimeout {
			return nil, ErrLockTimeout
		}
		return nil, err
	}

	return &FileLock{path: lockPath, file: f}, nil
}

// Release closes and removes the lock file.
func (l *FileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.file.Close()
	err := os.Remove(l.path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
