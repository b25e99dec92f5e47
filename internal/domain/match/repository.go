package match

import "context"

// Repository is the persistence boundary for canonical matches.
type Repository interface {
	Save(ctx context.Context, m Match) (Match, error)
	DeleteAll(ctx context.Context) error
	ListAll(ctx context.Context) ([]Match, error)
}
