package usecase

import (
	"context"

	"github.com/emiliogq/matchweek/internal/domain/match"
)

// SportProvider fetches the full upcoming schedule of one sport and maps it
// to canonical matches. Implementations live in external/ and are built
// through a ProviderFactory so this package never touches transport details.
type SportProvider interface {
	Sport() match.Sport
	FetchAll(ctx context.Context) ([]match.Match, error)
}

// ProviderFactory resolves a sport to a ready adapter. Construction must not
// perform I/O; unknown sports fail with match.ErrUnknownSport and missing
// API keys with ErrMissingCredential.
type ProviderFactory func(sport match.Sport) (SportProvider, error)

// CredentialResolver hands out provider API keys by the name they are
// registered under, keeping secret material out of the config struct.
type CredentialResolver interface {
	Credential(name string) (string, error)
}
