package config

import (
	"errors"
	"testing"
	"time"

	"github.com/emiliogq/matchweek/internal/usecase"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_SECRET_KEY", "test-secret")
	t.Setenv("AUTH_USERNAME", "admin")
	t.Setenv("AUTH_PASSWORD", "password")
	t.Setenv("FOOTBALL_TEAMS", "529:140:2025")
	t.Setenv("NBA_TEAMS", "17:12:2025")
	t.Setenv("MMA_SEASONS", "2025,2026")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ServiceName != "matchweek-api" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	if cfg.DefaultTimeFrame != "recent" {
		t.Fatalf("unexpected default frame %q", cfg.DefaultTimeFrame)
	}
	if cfg.AuthTokenTTL != time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.AuthTokenTTL)
	}
	if len(cfg.ActiveSports) != 3 {
		t.Fatalf("unexpected active sports %v", cfg.ActiveSports)
	}

	football, ok := cfg.Sports["football"]
	if !ok {
		t.Fatalf("football block missing")
	}
	if football.Host != "api-football-v1.p.rapidapi.com" {
		t.Fatalf("unexpected football host %q", football.Host)
	}
	if football.APIKeyName != "API_KEY_FOOTBALL" {
		t.Fatalf("unexpected football key name %q", football.APIKeyName)
	}
	if len(football.Teams) != 1 || football.Teams[0] != (TeamDescriptor{TeamID: 529, LeagueID: 140, Season: 2025}) {
		t.Fatalf("unexpected football teams %v", football.Teams)
	}

	mma, ok := cfg.Sports["mma"]
	if !ok {
		t.Fatalf("mma block missing")
	}
	if len(mma.Seasons) != 2 || mma.Seasons[0] != 2025 {
		t.Fatalf("unexpected mma seasons %v", mma.Seasons)
	}
}

func TestLoad_FailsWithoutAuthSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_SECRET_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing auth secret")
	}
}

func TestLoad_FailsOnMalformedTeamDescriptor(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FOOTBALL_TEAMS", "529:140")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed descriptor")
	}
}

func TestLoad_FailsWhenSportHasNoTargets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACTIVE_SPORTS", "football")
	t.Setenv("FOOTBALL_TEAMS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for sport without teams or seasons")
	}
}

func TestLoad_NarrowsActiveSports(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ACTIVE_SPORTS", "football")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.ActiveSports) != 1 || cfg.ActiveSports[0] != "football" {
		t.Fatalf("unexpected active sports %v", cfg.ActiveSports)
	}
	if _, ok := cfg.Sports["mma"]; ok {
		t.Fatalf("inactive sport block should not load")
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("API_KEY_FOOTBALL", "secret-key")

	var resolver EnvCredentials
	key, err := resolver.Credential("API_KEY_FOOTBALL")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if key != "secret-key" {
		t.Fatalf("unexpected key %q", key)
	}

	if _, err := resolver.Credential("API_KEY_UNSET"); !errors.Is(err, usecase.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if _, err := resolver.Credential(" "); !errors.Is(err, usecase.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential for blank name, got %v", err)
	}
}
