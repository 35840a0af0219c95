package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
)

// ErrSnapshotNotFound is returned when no snapshot file exists for a ticker
var ErrSnapshotNotFound = errors.New("snapshot file not found")

var snapshotExts = []string{".yaml", ".yml", ".json"}

// FileSource reads hand-maintained or exported snapshots from
// <dir>/<TICKER>.yaml (or .yml / .json)
type FileSource struct {
	dir string
	now func() time.Time
}

// NewFileSource creates a file source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir, now: time.Now}
}

// Dir returns the snapshot directory
func (f *FileSource) Dir() string {
	return f.dir
}

// Path returns the first existing snapshot path for ticker
func (f *FileSource) Path(ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, ext := range snapshotExts {
		p := filepath.Join(f.dir, ticker+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", ticker, f.dir, ErrSnapshotNotFound)
}

// Load reads and decodes the snapshot for ticker. Ticker and AsOf are
// filled in when the file omits them.
func (f *FileSource) Load(ticker string) (*contracts.Snapshot, error) {
	path, err := f.Path(ticker)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := DecodeSnapshot(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if snap.Ticker == "" {
		snap.Ticker = ticker
	}
	if snap.Stock != nil && snap.Stock.Ticker == "" {
		snap.Stock.Ticker = ticker
	}
	if snap.AsOf.IsZero() {
		snap.AsOf = f.now()
	}
	return snap, nil
}

// Collect implements contracts.SnapshotSource for offline runs
func (f *FileSource) Collect(_ context.Context, ticker string) (*contracts.Snapshot, error) {
	return f.Load(ticker)
}

// DecodeSnapshot parses a snapshot document. ext selects JSON (".json")
// or YAML (anything else). Unknown fields are rejected.
func DecodeSnapshot(data []byte, ext string) (*contracts.Snapshot, error) {
	var snap contracts.Snapshot

	if strings.EqualFold(ext, ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&snap); err != nil {
			return nil, err
		}
		return &snap, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
