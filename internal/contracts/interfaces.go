package contracts

import "context"

// SnapshotSource collects stock and macro inputs for a ticker
type SnapshotSource interface {
	Collect(ctx context.Context, ticker string) (*Snapshot, error)
}

// NewsSource produces the news-derived input for a ticker
type NewsSource interface {
	Collect(ctx context.Context, ticker string) (*NewsData, error)
}

// IdeaSink receives analyses worth acting on
type IdeaSink interface {
	Publish(ctx context.Context, analysis *Analysis, text string) error
	Close() error
}
