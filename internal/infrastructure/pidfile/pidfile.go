package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// AlreadyRunningError reports a live station process holding the lock
type AlreadyRunningError struct {
	PID     int
	Station string
}

func (e *AlreadyRunningError) Error() string {
	if e.Station != "" {
		return fmt.Sprintf("station %q is already running (PID %d)", e.Station, e.PID)
	}
	return fmt.Sprintf("station is already running (PID %d)", e.PID)
}

// PIDFile keeps two station processes from running against the same
// history database. The file holds the owner's PID and station name.
type PIDFile struct {
	path    string
	station string
}

// New creates a PIDFile for station at path
func New(path, station string) *PIDFile {
	return &PIDFile{path: path, station: station}
}

// Path returns the lock file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire takes the lock. A file left by a dead process, or one that cannot
// be parsed, is treated as stale and replaced.
func (p *PIDFile) Acquire() error {
	data, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		if pid, station, ok := parse(data); ok && pid != os.Getpid() && isProcessRunning(pid) {
			return &AlreadyRunningError{PID: pid, Station: station}
		}
		if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read existing PID file: %w", err)
	}

	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("PID file %s was created by another process", p.path)
		}
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n%s\n", os.Getpid(), p.station); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the lock if this process still owns it
func (p *PIDFile) Release() error {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}
	if pid, _, ok := parse(data); ok && pid != os.Getpid() {
		return nil
	}

	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func parse(data []byte) (pid int, station string, ok bool) {
	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || pid <= 0 {
		return 0, "", false
	}
	if len(lines) == 2 {
		station = strings.TrimSpace(lines[1])
	}
	return pid, station, true
}

// isProcessRunning sends signal 0, which only checks that pid exists
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// exists, owned by someone else
		return true
	default:
		return false
	}
}
