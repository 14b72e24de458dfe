package analysis

import (
	"context"
	"sync"
)

// DefaultMemoryLimit is how many analyses a MemoryRepo keeps by default.
const DefaultMemoryLimit = 1000

// MemoryRepo keeps the newest analyses in memory, oldest first, and is safe
// for concurrent use. Once full, each new record evicts the oldest one.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Analysis
	order []string
	limit int
}

// NewMemoryRepo constructs a MemoryRepo holding DefaultMemoryLimit records.
func NewMemoryRepo() *MemoryRepo {
	return NewMemoryRepoWithLimit(DefaultMemoryLimit)
}

// NewMemoryRepoWithLimit constructs a MemoryRepo holding at most limit
// records. limit <= 0 takes DefaultMemoryLimit.
func NewMemoryRepoWithLimit(limit int) *MemoryRepo {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryRepo{byID: make(map[string]Analysis), limit: limit}
}

// Create stores the analysis, replacing any record with the same ID.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[analysis.ID]; !exists {
		r.order = append(r.order, analysis.ID)
	}
	r.byID[analysis.ID] = analysis
	r.evictLocked()
	return nil
}

func (r *MemoryRepo) evictLocked() {
	excess := len(r.order) - r.limit
	if excess <= 0 {
		return
	}
	for _, id := range r.order[:excess] {
		delete(r.byID, id)
	}
	// Copy so the evicted prefix does not pin the backing array.
	r.order = append([]string(nil), r.order[excess:]...)
}

// Len reports how many analyses are held.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// ListRecent returns analyses newest first. limit <= 0 means no limit.
func (r *MemoryRepo) ListRecent(ctx context.Context, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Analysis, 0)
	for i := len(r.order) - 1 - offset; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.byID[r.order[i]])
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
