package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/teimsafety/ppectl/internal/shared"
)

// Purpose names a ledger slot. Exactly one handle may be live per purpose.
type Purpose string

const (
	PurposePreview Purpose = "preview"
	PurposeResult  Purpose = "result"
)

// Ledger owns every transient media file written for preview or result
// display and guarantees each is removed exactly once, on replacement or
// teardown.
//
// Publish writes the replacement file before removing the prior one, so a
// consumer holding the old handle never observes a missing file between the
// two operations.
type Ledger struct {
	mu      sync.Mutex
	dir     string
	ownsDir bool
	handles map[Purpose]string
	counter int
	logger  *log.Logger
}

// NewLedger creates a Ledger rooted at dir. An empty dir allocates a private
// temp directory that RevokeAll removes.
func NewLedger(dir string, logger *log.Logger) (*Ledger, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ownsDir := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "ppectl-media-")
		if err != nil {
			return nil, fmt.Errorf("failed to create media directory: %w", err)
		}
		dir = tmp
		ownsDir = true
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &Ledger{
		dir:     dir,
		ownsDir: ownsDir,
		handles: make(map[Purpose]string),
		logger:  logger,
	}, nil
}

// Publish writes data to a fresh handle for the given purpose, swaps it in,
// and removes the prior handle for that purpose if one existed. Returns the
// new handle path.
func (l *Ledger) Publish(purpose Purpose, data []byte, ext string) (string, error) {
	if ext == "" {
		ext = ".bin"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++
	path := filepath.Join(l.dir, fmt.Sprintf("%s-%04d%s", purpose, l.counter, ext))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s handle: %w", purpose, err)
	}

	prev, had := l.handles[purpose]
	l.handles[purpose] = path

	// create-then-swap: the old file goes away only after the new one is
	// in place and registered.
	if had {
		if err := os.Remove(prev); err != nil && !os.IsNotExist(err) {
			l.logger.Warn("failed to remove replaced handle", "path", prev, "err", err)
		}
	}

	return path, nil
}

// Handle returns the live handle for the given purpose, if any.
func (l *Ledger) Handle(purpose Purpose) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	path, ok := l.handles[purpose]
	return path, ok
}

// Revoke removes the live handle for the given purpose. Revoking a purpose
// with no live handle is a no-op.
func (l *Ledger) Revoke(purpose Purpose) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revokeLocked(purpose)
}

// RevokeAll removes every live handle and, when the ledger owns its
// directory, the directory itself. Idempotent: calling it again neither
// errors nor removes anything twice.
func (l *Ledger) RevokeAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for purpose := range l.handles {
		if err := l.revokeLocked(purpose); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if l.ownsDir {
		if err := os.RemoveAll(l.dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (l *Ledger) revokeLocked(purpose Purpose) error {
	path, ok := l.handles[purpose]
	if !ok {
		return nil
	}
	delete(l.handles, purpose)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to revoke %s handle: %w", purpose, err)
	}
	return nil
}
