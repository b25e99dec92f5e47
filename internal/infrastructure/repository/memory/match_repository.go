package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/emiliogq/matchweek/internal/domain/match"
)

// MatchRepository is an in-memory match.Repository used by tests and by the
// agenda CLI when no database is configured.
type MatchRepository struct {
	mu      sync.RWMutex
	nextID  int64
	matches []match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{nextID: 1}
}

func (r *MatchRepository) Save(_ context.Context, m match.Match) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == 0 {
		m.ID = r.nextID
		r.nextID++
	}
	r.matches = append(r.matches, m)
	return m, nil
}

func (r *MatchRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matches = nil
	return nil
}

func (r *MatchRepository) ListAll(_ context.Context) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, len(r.matches))
	copy(out, r.matches)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
