package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/infrastructure/account/jwtauth"
	"github.com/emiliogq/matchweek/internal/infrastructure/repository/memory"
	"github.com/emiliogq/matchweek/internal/usecase"
)

type fakeProvider struct {
	sport   match.Sport
	matches []match.Match
	err     error
}

func (p *fakeProvider) Sport() match.Sport { return p.sport }

func (p *fakeProvider) FetchAll(context.Context) ([]match.Match, error) {
	return p.matches, p.err
}

type testAPI struct {
	router http.Handler
	repo   *memory.MatchRepository
	auth   *jwtauth.Service
}

func newTestAPI(t *testing.T, provider *fakeProvider) *testAPI {
	t.Helper()

	auth, err := jwtauth.New("test-secret", time.Hour, nil)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	factory := func(sport match.Sport) (usecase.SportProvider, error) {
		if provider == nil || sport != provider.sport {
			return nil, match.ErrUnknownSport
		}
		return provider, nil
	}

	repo := memory.NewMatchRepository()
	service := usecase.NewMatchService(
		usecase.NewAggregationService(factory, 2),
		repo,
		nil,
		[]match.Sport{match.SportFootball},
	)

	handler := NewHandler(service, auth, Credentials{Username: "admin", Password: "password"}, slog.Default())
	return &testAPI{
		router: NewRouter(handler, auth, slog.Default(), []string{"*"}),
		repo:   repo,
		auth:   auth,
	}
}

func upcomingMatch(t *testing.T, home string) match.Match {
	t.Helper()
	now := time.Now().In(match.Location())
	return match.New(match.Params{
		Sport:  string(match.SportFootball),
		League: "La Liga",
		Home:   home,
		Away:   "Opponent",
		Start:  now.Add(2 * time.Hour),
	}, now)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope
}

func TestLogin(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, nil)

	cases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid credentials", `{"username":"admin","password":"password"}`, http.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"ghost","password":"password"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":"admin"}`, http.StatusBadRequest},
		{"malformed body", `{"username":`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				return
			}

			envelope := decodeEnvelope(t, rec)
			data, _ := envelope["data"].(map[string]any)
			token, _ := data["accessToken"].(string)
			if token == "" {
				t.Fatalf("missing access token in %v", envelope)
			}
			if data["tokenType"] != "Bearer" {
				t.Fatalf("unexpected token type %v", data["tokenType"])
			}
		})
	}
}

func TestListMatches_RequiresAuth(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token should be 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token should be 401, got %d", rec.Code)
	}
}

func TestListMatches_ReturnsStoredSchedule(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, nil)
	if _, err := api.repo.Save(context.Background(), upcomingMatch(t, "Barcelona")); err != nil {
		t.Fatalf("seed repo: %v", err)
	}
	token, _, err := api.auth.IssueAccessToken("admin")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	data, _ := envelope["data"].(map[string]any)
	if count, _ := data["count"].(float64); count != 1 {
		t.Fatalf("unexpected count in %v", data)
	}
	matches, _ := data["matches"].([]any)
	if len(matches) != 1 {
		t.Fatalf("unexpected matches payload %v", data)
	}
	row, _ := matches[0].(map[string]any)
	if row["home"] != "Barcelona" || row["league"] != "La Liga" {
		t.Fatalf("unexpected match row %v", row)
	}
	if card, _ := row["card"].(string); !strings.Contains(card, "Barcelona vs Opponent") {
		t.Fatalf("unexpected card %q", card)
	}
}

func TestImportMatches(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		sport:   match.SportFootball,
		matches: []match.Match{upcomingMatch(t, "Barcelona")},
	}
	api := newTestAPI(t, provider)
	token, _, err := api.auth.IssueAccessToken("admin")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/import", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data, _ := envelope["data"].(map[string]any)
	if stored, _ := data["stored"].(float64); stored != 1 {
		t.Fatalf("unexpected stored count in %v", data)
	}

	stored, err := api.repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list repo: %v", err)
	}
	if len(stored) != 1 || stored[0].Home != "Barcelona" {
		t.Fatalf("import did not persist: %v", stored)
	}
}

func TestImportMatches_AllProvidersFailing(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{
		sport: match.SportFootball,
		err:   errors.New("upstream down"),
	}
	api := newTestAPI(t, provider)
	token, _, err := api.auth.IssueAccessToken("admin")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/matches/import", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("total provider failure should be 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz_IsPublic(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz should be public, got %d", rec.Code)
	}
}
