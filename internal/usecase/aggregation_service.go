package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"

	"github.com/emiliogq/matchweek/internal/domain/match"
)

const defaultAggregationWorkers = 4

type AggregationResult struct {
	Matches       []match.Match     `json:"-"`
	Frame         string            `json:"frame"`
	ProviderCount int               `json:"provider_count"`
	SuccessCount  int               `json:"success_count"`
	FailedCount   int               `json:"failed_count"`
	WorkerCount   int               `json:"worker_count"`
	Failures      []ProviderFailure `json:"failures,omitempty"`
}

type ProviderFailure struct {
	Sport      string `json:"sport"`
	Message    string `json:"message"`
	DurationMs int64  `json:"duration_ms"`
}

// AggregationService fans out to one adapter per requested sport, merges the
// schedules, and filters them down to a time frame. A single failing
// provider is reported, not fatal; the call fails only when no provider
// produced anything.
type AggregationService struct {
	factory    ProviderFactory
	maxWorkers int
}

func NewAggregationService(factory ProviderFactory, maxWorkers int) *AggregationService {
	if maxWorkers <= 0 {
		maxWorkers = defaultAggregationWorkers
	}
	return &AggregationService{
		factory:    factory,
		maxWorkers: maxWorkers,
	}
}

func (s *AggregationService) Aggregate(ctx context.Context, sports []match.Sport, frame string) (AggregationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Aggregate")
	defer span.End()

	if len(sports) == 0 {
		return AggregationResult{}, fmt.Errorf("%w: no sports requested", ErrInvalidInput)
	}

	providers := make([]SportProvider, 0, len(sports))
	for _, sport := range sports {
		provider, err := s.factory(sport)
		if err != nil {
			return AggregationResult{}, fmt.Errorf("resolve provider %s: %w", sport, err)
		}
		providers = append(providers, provider)
	}

	workerCount := s.maxWorkers
	if workerCount > len(providers) {
		workerCount = len(providers)
	}

	result := AggregationResult{
		Frame:         frame,
		ProviderCount: len(providers),
		WorkerCount:   workerCount,
	}

	type providerOutcome struct {
		sport   match.Sport
		matches []match.Match
		err     error
		elapsed time.Duration
	}

	outcomes := make(chan providerOutcome, len(providers))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return AggregationResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, provider := range providers {
		provider := provider
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			matches, err := provider.FetchAll(ctx)
			if err != nil {
				failedCount.Add(1)
			} else {
				successCount.Add(1)
			}
			outcomes <- providerOutcome{
				sport:   provider.Sport(),
				matches: matches,
				err:     err,
				elapsed: time.Since(start),
			}
		}); err != nil {
			workers.Done()
			return AggregationResult{}, fmt.Errorf("submit fetch to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(outcomes)

	merged := make([]match.Match, 0, 64)
	for outcome := range outcomes {
		if outcome.err != nil {
			result.Failures = append(result.Failures, ProviderFailure{
				Sport:      string(outcome.sport),
				Message:    outcome.err.Error(),
				DurationMs: outcome.elapsed.Milliseconds(),
			})
			continue
		}
		merged = append(merged, outcome.matches...)
	}

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	sort.SliceStable(result.Failures, func(i, j int) bool {
		return result.Failures[i].Sport < result.Failures[j].Sport
	})

	if result.SuccessCount == 0 {
		return result, fmt.Errorf("%w: all %d providers failed", ErrDependencyUnavailable, result.FailedCount)
	}

	filtered := merged[:0]
	for _, m := range merged {
		if m.MeetsTimeFrame(frame) {
			filtered = append(filtered, m)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Start.Before(filtered[j].Start)
	})

	result.Matches = filtered
	return result, nil
}

// RenderCards renders one card per match, collapsing runs of identical
// adjacent cards. Duplicates separated by another match survive; the cheap
// neighbour check is all the dedupe the agenda needs once matches are
// sorted.
func RenderCards(matches []match.Match, withTimeLabels bool) []string {
	cards := make([]string, 0, len(matches))
	previous := ""
	for _, m := range matches {
		card := m.Card(withTimeLabels)
		if card == previous {
			continue
		}
		cards = append(cards, card)
		previous = card
	}
	return cards
}

// RenderAgenda joins the deduplicated cards into a printable block.
func RenderAgenda(matches []match.Match, withTimeLabels bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, card := range RenderCards(matches, withTimeLabels) {
		_, _ = buf.WriteString(card)
		_ = buf.WriteByte('\n')
	}
	return buf.String()
}
