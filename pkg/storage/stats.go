package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"
)

// Stats summarizes the index contents.
type Stats struct {
	Hacks        int       `json:"hacks"`
	Categories   int       `json:"categories"`
	Sources      int       `json:"sources"`
	OldestDate   string    `json:"oldest_date,omitempty"`
	NewestDate   string    `json:"newest_date,omitempty"`
	LastImported time.Time `json:"last_imported,omitzero"`
	SizeBytes    int64     `json:"size_bytes"`
}

// Stats computes index statistics.
func (i *Index) Stats(ctx context.Context) (*Stats, error) {
	var s Stats

	err := i.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT NULLIF(source, '')),
			MIN(NULLIF(date, '')), MAX(NULLIF(date, ''))
		FROM hacks`).Scan(&s.Hacks, &s.Sources, nullString{&s.OldestDate}, nullString{&s.NewestDate})
	if err != nil {
		return nil, fmt.Errorf("counting hacks: %w", err)
	}

	if err := i.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT name) FROM hack_categories`).Scan(&s.Categories); err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}

	var last sql.NullString
	if err := i.db.QueryRowContext(ctx, `SELECT MAX(imported_at) FROM hacks`).Scan(&last); err != nil {
		return nil, fmt.Errorf("reading last import: %w", err)
	}
	if last.Valid {
		if t, err := parseSQLiteTime(last.String); err == nil {
			s.LastImported = t
		}
	}

	if fi, err := os.Stat(i.path); err == nil {
		s.SizeBytes = fi.Size()
	}
	return &s, nil
}

// nullString scans a nullable TEXT column into a plain string.
type nullString struct{ dst *string }

func (n nullString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n.dst = ""
	case string:
		*n.dst = v
	case []byte:
		*n.dst = string(v)
	default:
		return fmt.Errorf("unexpected %T for text column", src)
	}
	return nil
}

// parseSQLiteTime accepts both RFC 3339 and SQLite's CURRENT_TIMESTAMP
// layout.
func parseSQLiteTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
