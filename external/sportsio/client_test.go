package sportsio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/platform/logging"
	"github.com/emiliogq/matchweek/internal/platform/resilience"
	"github.com/emiliogq/matchweek/internal/usecase"
)

func testClient(t *testing.T, serverURL, host string, maxRetries int) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		BaseURL:    serverURL,
		Host:       host,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled: false,
		},
	})
}

func refClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 1, 14, 9, 0, 0, 0, match.Location())
	}
}

func TestFootballProvider_MapsFixtures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-rapidapi-key"); got != "test-key" {
			t.Errorf("missing api key header, got %q", got)
		}
		if got := r.Header.Get("x-rapidapi-host"); got != "api-football-v1.p.rapidapi.com" {
			t.Errorf("missing host header, got %q", got)
		}
		if got := r.URL.Query().Get("team"); got != "529" {
			t.Errorf("unexpected team query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":[
			{"fixture":{"date":"2026-01-16T20:00:00Z"},"teams":{"home":{"name":"Barcelona"},"away":{"name":"Sevilla"}}},
			{"fixture":{"date":"2026-01-22T19:00:00+01:00"},"teams":{"home":{"name":"Girona"},"away":{"name":"Barcelona"}}}
		]}`))
	}))
	defer server.Close()

	provider := NewFootballProvider(
		testClient(t, server.URL, "api-football-v1.p.rapidapi.com", 0),
		[]TeamDescriptor{{TeamID: 529, LeagueID: 140, Season: 2025}},
		refClock(),
	)

	matches, err := provider.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	first := matches[0]
	if first.Sport != string(match.SportFootball) || first.League != "La Liga" {
		t.Fatalf("unexpected sport/league: %+v", first)
	}
	if first.Home != "Barcelona" || first.Away != "Sevilla" {
		t.Fatalf("unexpected teams: %+v", first)
	}
	// 20:00 UTC normalizes to the afternoon on the US east coast.
	if first.TimeOfDay != "15:00" || first.Weekday != "FRI" {
		t.Fatalf("unexpected normalized time: %s %s", first.Weekday, first.TimeOfDay)
	}
	if !first.Frame.InCurrentWeek {
		t.Fatalf("expected current-week classification: %+v", first.Frame)
	}
}

func TestBasketballProvider_MapsVisitors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":[
			{"date":{"start":"2026-01-21T00:30:00Z"},"teams":{"home":{"name":"Lakers"},"visitors":{"name":"Celtics"}}}
		]}`))
	}))
	defer server.Close()

	provider := NewBasketballProvider(
		testClient(t, server.URL, "", 0),
		[]TeamDescriptor{{TeamID: 17, LeagueID: 12, Season: 2025}},
		refClock(),
	)

	matches, err := provider.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Home != "Lakers" || m.Away != "Celtics" {
		t.Fatalf("unexpected teams: %+v", m)
	}
	// Past midnight UTC is still the previous evening at the reference zone.
	if got := m.Start.Format("2006-01-02 15:04"); got != "2026-01-20 19:30" {
		t.Fatalf("unexpected normalized start: %s", got)
	}
}

func TestMMAProvider_GroupsNumberedEvents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fights" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("season"); got != "2026" {
			t.Errorf("unexpected season query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":[
			{"slug":"UFC 311: Makhachev vs. Moicano","is_main":true,"date":"2026-01-18T03:00:00Z"},
			{"slug":"UFC 311: Makhachev vs. Moicano","is_main":true,"date":"2026-01-18T04:00:00Z"},
			{"slug":"UFC Fight Night: Adesanya vs. Imavov","is_main":true,"date":"2026-02-01T20:00:00Z"},
			{"slug":"UFC 312","is_main":true,"date":"2026-02-08T03:00:00Z"}
		]}`))
	}))
	defer server.Close()

	provider := NewMMAProvider(testClient(t, server.URL, "", 0), []int{2026}, refClock())

	matches, err := provider.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// UFC 312 is numbered but its slug has no fight card to split, so only
	// UFC 311 survives.
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(matches), matches)
	}
	m := matches[0]
	if m.Sport != string(match.SportMMA) || m.League != "UFC" {
		t.Fatalf("unexpected sport/league: %+v", m)
	}
	if m.Home != "Makhachev" || m.Away != "Moicano" {
		t.Fatalf("unexpected headliners: %+v", m)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":[]}`))
	}))
	defer server.Close()

	provider := NewFootballProvider(
		testClient(t, server.URL, "", 1),
		[]TeamDescriptor{{TeamID: 529, LeagueID: 140, Season: 2025}},
		refClock(),
	)

	matches, err := provider.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("fetch after retry: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected empty schedule, got %v", matches)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClient_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	provider := NewBasketballProvider(
		testClient(t, server.URL, "", 3),
		[]TeamDescriptor{{TeamID: 17, LeagueID: 12, Season: 2025}},
		refClock(),
	)

	_, err := provider.FetchAll(context.Background())
	if !errors.Is(err, usecase.ErrProviderRequest) {
		t.Fatalf("expected ErrProviderRequest, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("403 must not be retried, got %d attempts", calls.Load())
	}
}

func TestClient_CircuitBreakerRejectsWhenOpen(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    time.Second,
		MaxRetries: 0,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
	provider := NewMMAProvider(client, []int{2026}, refClock())

	if _, err := provider.FetchAll(context.Background()); !errors.Is(err, usecase.ErrProviderRequest) {
		t.Fatalf("expected provider failure to trip the breaker, got %v", err)
	}
	if _, err := provider.FetchAll(context.Background()); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open circuit rejection, got %v", err)
	}
}
