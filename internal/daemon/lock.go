package daemon

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock is an exclusive advisory flock(2) lock backed by a file on disk.
// Unlike a PID-file-plus-liveness-check, a held flock cannot be mistaken
// for stale state left behind by a crashed process: the kernel releases
// it the moment the holding process's file descriptors close, including
// on a crash.
type Lock struct {
	file *os.File
}

// TryAcquire attempts to take the exclusive lock at path, creating the
// file if necessary. ok is false if another process already holds it.
func TryAcquire(path string) (l *Lock, ok bool, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, false, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("flock: %w", err)
	}

	return &Lock{file: f}, true, nil
}

// Release drops the lock and closes the underlying file descriptor.
func (l *Lock) Release() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("unflock: %w", err)
	}
	return l.file.Close()
}
