package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/emiliogq/matchweek/external/sportsio"
	"github.com/emiliogq/matchweek/internal/config"
	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/infrastructure/account/jwtauth"
	"github.com/emiliogq/matchweek/internal/infrastructure/repository/memory"
	"github.com/emiliogq/matchweek/internal/infrastructure/repository/postgres"
	"github.com/emiliogq/matchweek/internal/interfaces/httpapi"
	"github.com/emiliogq/matchweek/internal/platform/cache"
	"github.com/emiliogq/matchweek/internal/platform/logging"
	"github.com/emiliogq/matchweek/internal/platform/resilience"
	"github.com/emiliogq/matchweek/internal/usecase"
)

// NewHTTPServer wires the full service from config. The returned closer
// releases held resources (the database pool) and is safe to call even
// when the server never started.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, closeDB, err := NewMatchRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	authSvc, err := jwtauth.New(cfg.AuthSecret, cfg.AuthTokenTTL, nil)
	if err != nil {
		_ = closeDB()
		return nil, nil, fmt.Errorf("init auth: %w", err)
	}

	sports, err := activeSports(cfg.ActiveSports)
	if err != nil {
		_ = closeDB()
		return nil, nil, err
	}

	factory := NewProviderFactory(cfg, logging.Default())
	aggregator := usecase.NewAggregationService(factory, cfg.AggregationWorkers)
	matchSvc := usecase.NewMatchService(aggregator, repo, store, sports)

	handler := httpapi.NewHandler(matchSvc, authSvc, httpapi.Credentials{
		Username: cfg.AuthUsername,
		Password: cfg.AuthPassword,
	}, logger)
	router := httpapi.NewRouter(handler, authSvc, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = closeDB()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeDB, nil
}

// NewProviderFactory builds sport providers on demand from the configured
// sport blocks. Credentials are read from the environment at construction
// time so a missing key surfaces as a provider failure, not a panic.
func NewProviderFactory(cfg config.Config, logger *logging.Logger) usecase.ProviderFactory {
	deps := sportsio.Deps{
		HTTPClient:  &http.Client{Timeout: cfg.ProviderTimeout},
		Logger:      logger,
		Credentials: config.EnvCredentials{},
		Transport: sportsio.TransportConfig{
			Timeout:    cfg.ProviderTimeout,
			MaxRetries: cfg.ProviderMaxRetries,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ProviderCircuitEnabled,
				FailureThreshold: cfg.ProviderCircuitFailureCount,
				OpenTimeout:      cfg.ProviderCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpenMaxReq,
			},
		},
	}

	return func(sport match.Sport) (usecase.SportProvider, error) {
		sportCfg, ok := cfg.Sports[string(sport)]
		if !ok {
			return nil, fmt.Errorf("%w: sport %q is not configured", usecase.ErrInvalidInput, sport)
		}
		return sportsio.NewProvider(sport, providerConfig(sportCfg), deps)
	}
}

// NewMatchRepository picks the backing store from config: postgres when
// DB_URL is set, an in-memory table otherwise.
func NewMatchRepository(cfg config.Config, logger *slog.Logger) (match.Repository, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() error { return nil }

	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("using in-memory match repository")
		return memory.NewMatchRepository(), noop, nil
	}

	db, err := otelsqlx.Open("postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	logger.Info("using postgres match repository", "db", dbNameFromURL(cfg.DBURL))
	return postgres.NewMatchRepository(db, time.Now), db.Close, nil
}

func providerConfig(sc config.SportConfig) sportsio.SportConfig {
	teams := make([]sportsio.TeamDescriptor, 0, len(sc.Teams))
	for _, t := range sc.Teams {
		teams = append(teams, sportsio.TeamDescriptor{
			TeamID:   t.TeamID,
			LeagueID: t.LeagueID,
			Season:   t.Season,
		})
	}
	return sportsio.SportConfig{
		BaseURL:    sc.BaseURL,
		Host:       sc.Host,
		APIKeyName: sc.APIKeyName,
		Teams:      teams,
		Seasons:    sc.Seasons,
	}
}

func activeSports(names []string) ([]match.Sport, error) {
	sports := make([]match.Sport, 0, len(names))
	for _, name := range names {
		sport, err := match.ParseSport(name)
		if err != nil {
			return nil, fmt.Errorf("ACTIVE_SPORTS: %w", err)
		}
		sports = append(sports, sport)
	}
	return sports, nil
}
