package storage

import (
	"context"
	"fmt"
)

// Check runs SQLite's integrity check and, when deep is set, the FTS5
// index integrity check. It returns the problems found; an empty slice
// means the index is healthy.
func (i *Index) Check(ctx context.Context, deep bool) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, "PRAGMA integrity_check")
	if err != nil {
		return nil, fmt.Errorf("running integrity check: %w", err)
	}
	defer i.closeRows(rows)

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scanning integrity check: %w", err)
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if deep {
		if _, err := i.db.ExecContext(ctx, "INSERT INTO hacks_fts(hacks_fts) VALUES ('integrity-check')"); err != nil {
			problems = append(problems, fmt.Sprintf("fts: %v", err))
		}
	}
	return problems, nil
}

// RebuildFTS recreates the full-text index from the hacks table and
// returns the number of indexed hacks.
func (i *Index) RebuildFTS(ctx context.Context) (int, error) {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				i.logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM hacks_fts"); err != nil {
		return 0, fmt.Errorf("clearing FTS index: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO hacks_fts (rowid, title, content, categories, tags)
		SELECT h.seq, h.title,
			CASE WHEN h.content != '' THEN h.content ELSE h.excerpt END,
			COALESCE((SELECT group_concat(value, ' ') FROM json_each(h.categories)), ''),
			COALESCE((SELECT group_concat(value, ' ') FROM json_each(h.tags)), '')
		FROM hacks h`)
	if err != nil {
		return 0, fmt.Errorf("reindexing hacks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing FTS rebuild: %w", err)
	}
	committed = true

	i.logger.Infof("rebuilt FTS index: %d hacks", n)
	return int(n), nil
}

// Analyze updates the query planner statistics.
func (i *Index) Analyze(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "ANALYZE")
	return err
}

// Checkpoint flushes the write-ahead log into the database file.
func (i *Index) Checkpoint(ctx context.Context) error {
	_, err := i.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}
