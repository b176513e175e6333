package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/helios/fss/internal/domain"
)

// snapshotCacheTTL bounds how long a cached snapshot can serve reads after
// the underlying row changed.
const snapshotCacheTTL = 10 * time.Minute

// SnapshotUseCase serves published snapshots to the presentation layer,
// caching the latest one.
type SnapshotUseCase struct {
	snapshotRepo SnapshotRepository
	cache        Cache
}

// NewSnapshotUseCase creates a new SnapshotUseCase.
func NewSnapshotUseCase(snapshotRepo SnapshotRepository, cache Cache) *SnapshotUseCase {
	return &SnapshotUseCase{snapshotRepo: snapshotRepo, cache: cache}
}

// GetLatest returns the most recently published snapshot.
func (uc *SnapshotUseCase) GetLatest(ctx context.Context) (*domain.Snapshot, error) {
	if cached, err := uc.cache.Get(ctx, latestSnapshotCacheKey); err == nil && cached != "" {
		var snapshot domain.Snapshot
		if err := json.Unmarshal([]byte(cached), &snapshot); err == nil {
			return &snapshot, nil
		}
	}

	snapshot, err := uc.snapshotRepo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(snapshot); err == nil {
		// Cache failures only cost the next read a database round trip.
		_ = uc.cache.Set(ctx, latestSnapshotCacheKey, string(encoded), snapshotCacheTTL)
	}

	return snapshot, nil
}

// GetByDate returns the snapshot published for the given evaluation date.
func (uc *SnapshotUseCase) GetByDate(ctx context.Context, asOf time.Time) (*domain.Snapshot, error) {
	return uc.snapshotRepo.GetByDate(ctx, domain.DateOnly(asOf))
}

// ListDates returns the evaluation dates with published snapshots, newest
// first, for trend analysis.
func (uc *SnapshotUseCase) ListDates(ctx context.Context, limit, offset int) ([]time.Time, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.snapshotRepo.ListDates(ctx, limit, offset)
}
