package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/emiliogq/matchweek/internal/domain/match"
	qb "github.com/emiliogq/matchweek/internal/platform/querybuilder"
)

type MatchRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMatchRepository(db *sqlx.DB, now func() time.Time) *MatchRepository {
	if now == nil {
		now = time.Now
	}
	return &MatchRepository{db: db, now: now}
}

func (r *MatchRepository) Save(ctx context.Context, m match.Match) (match.Match, error) {
	insertModel := matchInsertModel{
		Sport:     m.Sport,
		League:    m.League,
		Home:      m.Home,
		Away:      m.Away,
		StartAt:   m.Start,
		Details:   m.Details,
		CreatedAt: r.now().UTC(),
	}

	query, args, err := qb.InsertModel("matches", insertModel, "RETURNING id")
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return match.Match{}, fmt.Errorf("insert match: %w", err)
	}

	m.ID = id
	return m, nil
}

func (r *MatchRepository) DeleteAll(ctx context.Context) error {
	query, args, err := qb.DeleteFrom("matches").ToSQL()
	if err != nil {
		return fmt.Errorf("build delete matches query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}

// ListAll rebuilds each row through the domain constructor so derived fields
// and time-frame flags reflect the clock at read time, not at import time.
func (r *MatchRepository) ListAll(ctx context.Context) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		OrderBy("start_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	now := r.now()
	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, match.New(match.Params{
			ID:      row.ID,
			Sport:   row.Sport,
			League:  row.League,
			Home:    row.Home,
			Away:    row.Away,
			Start:   row.StartAt,
			Details: row.Details,
		}, now))
	}
	return out, nil
}
