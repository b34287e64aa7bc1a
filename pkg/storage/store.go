package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rubiojr/hackfinder/pkg/core"
)

// ErrMissingID rejects hacks without an ID.
var ErrMissingID = errors.New("hack has no id")

// StoreHacks inserts or updates hacks, keyed by ID, together with their
// category rows and full-text entries. All hacks are written in one
// transaction; it returns the number stored.
func (i *Index) StoreHacks(ctx context.Context, hacks []core.Hack) (int, error) {
	if len(hacks) == 0 {
		return 0, nil
	}

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

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO hacks (id, title, url, content, excerpt, source, author, date, image_url, categories, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			content = excluded.content,
			excerpt = excluded.excerpt,
			source = excluded.source,
			author = excluded.author,
			date = excluded.date,
			image_url = excluded.image_url,
			categories = excluded.categories,
			tags = excluded.tags,
			imported_at = CURRENT_TIMESTAMP
		RETURNING seq
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeStmt(i, upsert)

	ftsDelete, err := tx.PrepareContext(ctx, `DELETE FROM hacks_fts WHERE rowid = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing FTS delete: %w", err)
	}
	defer closeStmt(i, ftsDelete)

	ftsInsert, err := tx.PrepareContext(ctx, `
		INSERT INTO hacks_fts (rowid, title, content, categories, tags)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing FTS insert: %w", err)
	}
	defer closeStmt(i, ftsInsert)

	catDelete, err := tx.PrepareContext(ctx, `DELETE FROM hack_categories WHERE hack_id = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing category delete: %w", err)
	}
	defer closeStmt(i, catDelete)

	catInsert, err := tx.PrepareContext(ctx, `
		INSERT INTO hack_categories (hack_id, position, name) VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing category insert: %w", err)
	}
	defer closeStmt(i, catInsert)

	for _, h := range hacks {
		if h.ID == "" {
			return 0, fmt.Errorf("%w (url %q)", ErrMissingID, h.URL)
		}
		categories := cleanList(h.Categories)
		tags := cleanList(h.Tags)

		catJSON, err := json.Marshal(categories)
		if err != nil {
			return 0, fmt.Errorf("marshaling categories for %s: %w", h.ID, err)
		}
		tagJSON, err := json.Marshal(tags)
		if err != nil {
			return 0, fmt.Errorf("marshaling tags for %s: %w", h.ID, err)
		}

		var seq int64
		err = upsert.QueryRowContext(ctx,
			h.ID, h.Title, h.URL, h.Content, h.Excerpt, h.Source, h.Author, h.Date, h.ImageURL,
			string(catJSON), string(tagJSON),
		).Scan(&seq)
		if err != nil {
			return 0, fmt.Errorf("storing hack %s: %w", h.ID, err)
		}

		if _, err := ftsDelete.ExecContext(ctx, seq); err != nil {
			return 0, fmt.Errorf("clearing FTS entry for %s: %w", h.ID, err)
		}
		if _, err := ftsInsert.ExecContext(ctx, seq, h.Title, h.Body(),
			strings.Join(categories, " "), strings.Join(tags, " ")); err != nil {
			return 0, fmt.Errorf("indexing hack %s: %w", h.ID, err)
		}

		if _, err := catDelete.ExecContext(ctx, h.ID); err != nil {
			return 0, fmt.Errorf("clearing categories for %s: %w", h.ID, err)
		}
		for pos, name := range categories {
			if _, err := catInsert.ExecContext(ctx, h.ID, pos, name); err != nil {
				return 0, fmt.Errorf("storing category %q for %s: %w", name, h.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing hacks: %w", err)
	}
	committed = true

	i.logger.Debugf("stored %d hacks", len(hacks))
	return len(hacks), nil
}

type closer interface{ Close() error }

func closeStmt(i *Index, c closer) {
	if err := c.Close(); err != nil {
		i.logger.Warnf("failed to close statement: %v", err)
	}
}

// cleanList trims entries and drops blanks and case-insensitive
// duplicates, keeping the first spelling.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
