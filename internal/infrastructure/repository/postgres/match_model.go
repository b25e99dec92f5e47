package postgres

import "time"

type matchTableModel struct {
	ID        int64     `db:"id"`
	Sport     string    `db:"sport"`
	League    string    `db:"league"`
	Home      string    `db:"home"`
	Away      string    `db:"away"`
	StartAt   time.Time `db:"start_at"`
	Details   string    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
}

type matchInsertModel struct {
	Sport     string    `db:"sport"`
	League    string    `db:"league"`
	Home      string    `db:"home"`
	Away      string    `db:"away"`
	StartAt   time.Time `db:"start_at"`
	Details   string    `db:"details"`
	CreatedAt time.Time `db:"created_at"`
}
