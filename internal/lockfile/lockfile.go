// Package lockfile guards an IntakeFlow state directory against a second server
// opening the same SQLite database.
//
// The lock is an flock on a small key=value file, so the kernel drops it when the
// process exits for any reason.
package lockfile

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// LockFileName is the name of the lock file created in the state directory.
const LockFileName = "intakeflow.lock"

// Owner describes the process holding a lock. It is written into the lock file
// so a blocked second instance can report who is in the way.
type Owner struct {
	PID       int
	Addr      string
	Store     string
	StartedAt time.Time
}

func (o Owner) encode() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pid=%d\n", o.PID)
	if !o.StartedAt.IsZero() {
		fmt.Fprintf(&b, "started=%s\n", o.StartedAt.UTC().Format(time.RFC3339))
	}
	if o.Addr != "" {
		fmt.Fprintf(&b, "addr=%s\n", o.Addr)
	}
	if o.Store != "" {
		fmt.Fprintf(&b, "store=%s\n", o.Store)
	}
	return b.String()
}

// parseOwner reads the key=value lines written by encode. Unknown keys are ignored.
func parseOwner(content string) (Owner, bool) {
	var (
		o     Owner
		found bool
	)
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			if pid, err := strconv.Atoi(value); err == nil && pid > 0 {
				o.PID = pid
				found = true
			}
		case "started":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				o.StartedAt = ts
			}
		case "addr":
			o.Addr = value
		case "store":
			o.Store = value
		}
	}
	return o, found
}

// Lock is an acquired state directory lock.
type Lock struct {
	file     *os.File
	path     string
	acquired bool
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Acquire takes an exclusive lock on stateDir, creating the directory if needed.
// owner.PID is filled in when zero. A held lock yields a *LockError.
func Acquire(stateDir string, owner Owner) (*Lock, error) {
	lockPath := filepath.Join(stateDir, LockFileName)
	if owner.PID == 0 {
		owner.PID = os.Getpid()
	}

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		slog.Error("lockfile.Acquire: failed to create state directory", "error", err, "stateDir", stateDir)
		return nil, fmt.Errorf("failed to create state directory %s: %w", stateDir, err)
	}

	// O_TRUNC is deferred until the flock is held so a running owner's details survive.
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		slog.Error("lockfile.Acquire: failed to open lock file", "error", err, "lockPath", lockPath)
		return nil, fmt.Errorf("failed to open lock file %s: %w", lockPath, err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		holder := describeHolder(lockPath)
		slog.Error("lockfile.Acquire: state directory is locked", "error", err, "lockPath", lockPath, "holder", holder)
		return nil, &LockError{LockPath: lockPath, Holder: holder, Cause: err}
	}

	if err := writeOwner(file, owner); err != nil {
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
		slog.Error("lockfile.Acquire: failed to record owner", "error", err, "lockPath", lockPath)
		return nil, fmt.Errorf("failed to write lock information to %s: %w", lockPath, err)
	}

	slog.Info("lockfile.Acquire: state directory locked", "lockPath", lockPath, "pid", owner.PID)
	return &Lock{file: file, path: lockPath, acquired: true}, nil
}

func writeOwner(file *os.File, owner Owner) error {
	if err := file.Truncate(0); err != nil {
		return err
	}
	if _, err := file.WriteAt([]byte(owner.encode()), 0); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		slog.Warn("lockfile.Acquire: failed to sync lock file", "error", err, "path", file.Name())
	}
	return nil
}

// Release drops the lock and removes the lock file. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || !l.acquired || l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		slog.Error("Lock.Release: failed to release flock", "error", err, "lockPath", l.path)
	}
	if err := l.file.Close(); err != nil {
		slog.Error("Lock.Release: failed to close lock file", "error", err, "lockPath", l.path)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Lock.Release: failed to remove lock file", "error", err, "lockPath", l.path)
	}

	l.acquired = false
	l.file = nil
	slog.Info("Lock.Release: state directory unlocked", "lockPath", l.path)
	return nil
}

// LockError reports that another process holds the state directory lock.
type LockError struct {
	LockPath string
	Holder   string
	Cause    error
}

func (e *LockError) Error() string {
	msg := fmt.Sprintf("another IntakeFlow instance is using this state directory (lock file: %s)", e.LockPath)
	if e.Holder != "" {
		msg += "; held by " + e.Holder
	}
	return msg + fmt.Sprintf("; if no other instance is running the lock is stale and can be removed with: rm %s", e.LockPath)
}

func (e *LockError) Unwrap() error {
	return e.Cause
}

// describeHolder summarises the lock file contents for error messages.
func describeHolder(lockPath string) string {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return "unknown (lock file unreadable)"
	}
	owner, ok := parseOwner(string(data))
	if !ok {
		return "unknown (no owner recorded)"
	}

	state := "running"
	if !isProcessRunning(owner.PID) {
		state = "not running, stale lock"
	}
	desc := fmt.Sprintf("PID %d (%s)", owner.PID, state)
	if owner.Addr != "" {
		desc += " serving " + owner.Addr
	}
	if !owner.StartedAt.IsZero() {
		desc += " since " + owner.StartedAt.Format(time.RFC3339)
	}
	return desc
}

// isProcessRunning reports whether pid exists, using signal 0.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
