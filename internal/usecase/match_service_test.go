package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/infrastructure/repository/memory"
	"github.com/emiliogq/matchweek/internal/platform/cache"
)

func TestImportRecent_ReplacesStoredSchedule(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 14, 9, 0, 0, 0, match.Location())
	repo := memory.NewMatchRepository()

	stale := fixtureMatch(t, "football", "La Liga", "Old", time.Date(2026, 1, 2, 20, 0, 0, 0, match.Location()), now)
	if _, err := repo.Save(context.Background(), stale); err != nil {
		t.Fatalf("seed repo: %v", err)
	}

	providers := map[match.Sport]*stubProvider{
		match.SportFootball: {
			sport: match.SportFootball,
			matches: []match.Match{
				fixtureMatch(t, "football", "La Liga", "Barcelona", time.Date(2026, 1, 16, 20, 0, 0, 0, match.Location()), now),
				fixtureMatch(t, "football", "La Liga", "Sevilla", time.Date(2026, 1, 20, 18, 0, 0, 0, match.Location()), now),
			},
		},
	}

	svc := NewMatchService(
		NewAggregationService(stubFactory(providers), 2),
		repo,
		cache.NewStore(time.Minute),
		[]match.Sport{match.SportFootball},
	)

	result, err := svc.ImportRecent(context.Background())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Stored != 2 {
		t.Fatalf("expected 2 stored, got %d", result.Stored)
	}

	stored, err := svc.ListStored(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stale rows survived the import: %v", stored)
	}
	for _, m := range stored {
		if m.ID == 0 {
			t.Fatalf("stored match missing id: %+v", m)
		}
		if m.Home == "Old" {
			t.Fatalf("stale match still present after import")
		}
	}
}

func TestImportRecent_EmptyFetchKeepsExistingRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 14, 9, 0, 0, 0, match.Location())
	repo := memory.NewMatchRepository()
	existing := fixtureMatch(t, "football", "La Liga", "Keeper", time.Date(2026, 1, 16, 20, 0, 0, 0, match.Location()), now)
	if _, err := repo.Save(context.Background(), existing); err != nil {
		t.Fatalf("seed repo: %v", err)
	}

	providers := map[match.Sport]*stubProvider{
		match.SportFootball: {sport: match.SportFootball},
	}

	svc := NewMatchService(
		NewAggregationService(stubFactory(providers), 1),
		repo,
		nil,
		[]match.Sport{match.SportFootball},
	)

	result, err := svc.ImportRecent(context.Background())
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Stored != 0 {
		t.Fatalf("nothing should be stored from an empty fetch: %+v", result)
	}

	stored, err := svc.ListStored(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("existing rows must survive an empty fetch: %v", stored)
	}
}

func TestImportRecent_PropagatesTotalProviderFailure(t *testing.T) {
	t.Parallel()

	providers := map[match.Sport]*stubProvider{
		match.SportFootball: {sport: match.SportFootball, err: errors.New("boom")},
	}

	svc := NewMatchService(
		NewAggregationService(stubFactory(providers), 1),
		memory.NewMatchRepository(),
		nil,
		[]match.Sport{match.SportFootball},
	)

	if _, err := svc.ImportRecent(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestListStored_CachesBetweenImports(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 14, 9, 0, 0, 0, match.Location())
	repo := memory.NewMatchRepository()
	seeded := fixtureMatch(t, "football", "La Liga", "Barcelona", time.Date(2026, 1, 16, 20, 0, 0, 0, match.Location()), now)
	if _, err := repo.Save(context.Background(), seeded); err != nil {
		t.Fatalf("seed repo: %v", err)
	}

	providers := map[match.Sport]*stubProvider{
		match.SportFootball: {
			sport: match.SportFootball,
			matches: []match.Match{
				fixtureMatch(t, "football", "La Liga", "Sevilla", time.Date(2026, 1, 17, 20, 0, 0, 0, match.Location()), now),
			},
		},
	}

	svc := NewMatchService(
		NewAggregationService(stubFactory(providers), 1),
		repo,
		cache.NewStore(time.Minute),
		[]match.Sport{match.SportFootball},
	)

	first, err := svc.ListStored(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 1 || first[0].Home != "Barcelona" {
		t.Fatalf("unexpected first read: %v", first)
	}

	// Writes behind the cache's back are invisible until the cache is
	// invalidated by an import.
	extra := fixtureMatch(t, "football", "La Liga", "Hidden", time.Date(2026, 1, 18, 20, 0, 0, 0, match.Location()), now)
	if _, err := repo.Save(context.Background(), extra); err != nil {
		t.Fatalf("save behind cache: %v", err)
	}

	cached, err := svc.ListStored(context.Background())
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("expected cached read, got %v", cached)
	}

	if _, err := svc.ImportRecent(context.Background()); err != nil {
		t.Fatalf("import: %v", err)
	}

	fresh, err := svc.ListStored(context.Background())
	if err != nil {
		t.Fatalf("fresh list: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Home != "Sevilla" {
		t.Fatalf("import should reset the cache: %v", fresh)
	}
}
