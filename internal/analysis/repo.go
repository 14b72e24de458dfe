package analysis

import "context"

// Repo persists analysis records.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListRecent(ctx context.Context, limit, offset int) ([]Analysis, error)
}
