package sportsio

import (
	"fmt"
	"net/http"
	"time"

	"github.com/emiliogq/matchweek/internal/domain/match"
	"github.com/emiliogq/matchweek/internal/platform/logging"
	"github.com/emiliogq/matchweek/internal/platform/resilience"
	"github.com/emiliogq/matchweek/internal/usecase"
)

// TeamDescriptor points an adapter at one team's schedule. Season stands
// alone for sports whose endpoint is not team-scoped.
type TeamDescriptor struct {
	TeamID   int
	LeagueID int
	Season   int
}

// SportConfig is everything one adapter needs besides the shared transport
// settings. APIKeyName names the credential, it never holds the key itself.
type SportConfig struct {
	BaseURL    string
	Host       string
	APIKeyName string
	Teams      []TeamDescriptor
	Seasons    []int
}

// TransportConfig mirrors the client knobs shared by all adapters.
type TransportConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Deps struct {
	HTTPClient  *http.Client
	Logger      *logging.Logger
	Credentials usecase.CredentialResolver
	Transport   TransportConfig
	Now         func() time.Time
}

// NewProvider builds the adapter for a sport. Construction resolves the
// credential and wires the transport but performs no I/O.
func NewProvider(sport match.Sport, cfg SportConfig, deps Deps) (usecase.SportProvider, error) {
	if deps.Credentials == nil {
		return nil, fmt.Errorf("credential resolver is required")
	}
	apiKey, err := deps.Credentials.Credential(cfg.APIKeyName)
	if err != nil {
		return nil, fmt.Errorf("resolve credential for %s: %w", sport, err)
	}

	client := NewClient(ClientConfig{
		HTTPClient:     deps.HTTPClient,
		BaseURL:        cfg.BaseURL,
		Host:           cfg.Host,
		APIKey:         apiKey,
		Timeout:        deps.Transport.Timeout,
		MaxRetries:     deps.Transport.MaxRetries,
		Logger:         deps.Logger,
		CircuitBreaker: deps.Transport.CircuitBreaker,
	})

	switch sport {
	case match.SportFootball:
		return NewFootballProvider(client, cfg.Teams, deps.Now), nil
	case match.SportBasketball:
		return NewBasketballProvider(client, cfg.Teams, deps.Now), nil
	case match.SportMMA:
		return NewMMAProvider(client, cfg.Seasons, deps.Now), nil
	default:
		return nil, fmt.Errorf("%w: %q", match.ErrUnknownSport, sport)
	}
}
