package usecase

import (
	"context"
	"fmt"

	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/platform/cache"
)

const storedMatchesCacheKey = "matches:stored"

type ImportResult struct {
	Stored      int               `json:"stored"`
	Matches     []match.Match     `json:"-"`
	Aggregation AggregationResult `json:"aggregation"`
}

// MatchService owns the persisted schedule: it refreshes the table from the
// providers and serves reads through the TTL cache.
type MatchService struct {
	aggregator *AggregationService
	repo       match.Repository
	cache      *cache.Store
	sports     []match.Sport
}

func NewMatchService(aggregator *AggregationService, repo match.Repository, store *cache.Store, sports []match.Sport) *MatchService {
	return &MatchService{
		aggregator: aggregator,
		repo:       repo,
		cache:      store,
		sports:     sports,
	}
}

// ImportRecent replaces the stored schedule with the providers' current and
// next-week matches. The table is only cleared once the fetch produced
// something, so a bad provider day never empties the database.
func (s *MatchService) ImportRecent(ctx context.Context) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportRecent")
	defer span.End()

	aggregation, err := s.aggregator.Aggregate(ctx, s.sports, match.FrameRecent)
	if err != nil {
		return ImportResult{}, fmt.Errorf("aggregate recent matches: %w", err)
	}

	result := ImportResult{Aggregation: aggregation}
	if len(aggregation.Matches) == 0 {
		return result, nil
	}

	if err := s.repo.DeleteAll(ctx); err != nil {
		return ImportResult{}, fmt.Errorf("clear stored matches: %w", err)
	}

	stored := make([]match.Match, 0, len(aggregation.Matches))
	for _, m := range aggregation.Matches {
		saved, err := s.repo.Save(ctx, m)
		if err != nil {
			return ImportResult{}, fmt.Errorf("save match %s vs %s: %w", m.Home, m.Away, err)
		}
		stored = append(stored, saved)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, storedMatchesCacheKey)
	}

	result.Stored = len(stored)
	result.Matches = stored
	return result, nil
}

// ListStored returns the persisted schedule, cached between imports.
func (s *MatchService) ListStored(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ListStored")
	defer span.End()

	if s.cache == nil {
		return s.listStored(ctx)
	}

	value, err := s.cache.GetOrLoad(ctx, storedMatchesCacheKey, func(ctx context.Context) (any, error) {
		return s.listStored(ctx)
	})
	if err != nil {
		return nil, err
	}

	matches, ok := value.([]match.Match)
	if !ok {
		return s.listStored(ctx)
	}
	return matches, nil
}

func (s *MatchService) listStored(ctx context.Context) ([]match.Match, error) {
	matches, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored matches: %w", err)
	}
	return matches, nil
}
