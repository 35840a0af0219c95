package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// Journal is the append-only, human-readable scan log. It is also an
// IdeaSink that appends each idea block.
type Journal struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// OpenJournal opens (or creates) the log at path for appending
func OpenJournal(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{path: path, file: f}, nil
}

// Path returns the log file path
func (j *Journal) Path() string {
	return j.path
}

// Printf appends formatted text
func (j *Journal) Printf(format string, args ...interface{}) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := fmt.Fprintf(j.file, format, args...); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// Publish appends an idea block
func (j *Journal) Publish(_ context.Context, _ *contracts.Analysis, text string) error {
	return j.Printf("%s\n", text)
}

// SessionHeader appends the banner written when a monitor session starts
func (j *Journal) SessionHeader(start time.Time, watchlist []string, scanSchedule string) error {
	rule := strings.Repeat("=", ruleWidth)
	return j.Printf("\n%s\nCONTINUOUS MONITOR SESSION\nStart: %s\nWatchlist: %s\nScan schedule: %s\n%s\n",
		rule, Stamp(start), strings.Join(watchlist, ", "), scanSchedule, rule)
}

// Close closes the log file
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
