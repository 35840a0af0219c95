package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

// Source collects stock and macro inputs for a ticker. News is read
// separately by the analyzer.
type Source = contracts.SnapshotSource

// Collector combines live Yahoo data with optional snapshot files. Files
// override any field they set.
type Collector struct {
	live   *Yahoo
	files  *FileSource
	logger *logger.Logger
	now    func() time.Time
}

// New creates a collector. Either live or files may be nil, not both.
func New(live *Yahoo, files *FileSource, log *logger.Logger) *Collector {
	return &Collector{live: live, files: files, logger: log, now: time.Now}
}

// Collect builds the snapshot for ticker. It fails only when neither the
// chart API nor a snapshot file yields anything.
func (c *Collector) Collect(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	fileSnap, err := c.loadFile(ticker)
	if err != nil {
		return nil, err
	}

	if c.live == nil {
		if fileSnap == nil {
			return nil, fmt.Errorf("%s: %w", ticker, ErrSnapshotNotFound)
		}
		return fileSnap, nil
	}

	snap := &contracts.Snapshot{Ticker: ticker, AsOf: c.now()}

	stock, err := c.live.Stock(ctx, ticker)
	switch {
	case err == nil:
		snap.Stock = stock
	case fileSnap == nil:
		return nil, fmt.Errorf("collect %s: %w", ticker, err)
	default:
		c.logger.WithError(err).ForTicker(ticker).Warn("Chart data unavailable, using snapshot file only")
	}

	if fileSnap != nil {
		// keep the live timestamp; file AsOf is only a default
		fileSnap.AsOf = time.Time{}
		if snap, err = Merge(snap, fileSnap); err != nil {
			return nil, err
		}
	}

	sector := ""
	if snap.Stock != nil {
		sector = snap.Stock.Sector
	}
	macro := c.live.Macro(ctx, sector)
	if snap.Macro != nil {
		// file macro fields override live ones
		if err := overlayMacro(macro, snap.Macro); err != nil {
			return nil, err
		}
	}
	snap.Macro = macro

	return snap, nil
}

func (c *Collector) loadFile(ticker string) (*contracts.Snapshot, error) {
	if c.files == nil {
		return nil, nil
	}
	snap, err := c.files.Load(ticker)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"dir":    c.files.Dir(),
	}).Debug("Loaded snapshot file")
	return snap, nil
}

func overlayMacro(base, overlay *contracts.MacroData) error {
	if _, err := mergeSection(base, overlay); err != nil {
		return fmt.Errorf("merge macro: %w", err)
	}
	return nil
}
