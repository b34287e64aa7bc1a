package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/pagination"
)

const hackColumns = `h.id, h.title, h.url, h.content, h.excerpt, h.source, h.author, h.date, h.image_url, h.categories, h.tags`

// bm25 weights for title, content, categories and tags.
const rankExpr = `bm25(hacks_fts, 10.0, 1.0, 2.0, 1.0)`

// SearchByText returns one page of the hacks matching query, best match
// first. Every word of the query must occur in the title, content,
// categories or tags; punctuation is ignored.
func (i *Index) SearchByText(ctx context.Context, query string, page, pageSize int) (*core.ResultPage, error) {
	match := ftsMatch(query, " ")
	if match == "" {
		return &core.ResultPage{Results: []core.Hack{}}, nil
	}
	i.logger.Debugf("fts match %q page %d", match, page)

	hitsQuery := `
		SELECT ` + hackColumns + `
		FROM hacks_fts f
		JOIN hacks h ON h.seq = f.rowid
		WHERE hacks_fts MATCH ?
		ORDER BY ` + rankExpr + `, h.date DESC
		LIMIT ? OFFSET ?`
	countQuery := `SELECT COUNT(*) FROM hacks_fts WHERE hacks_fts MATCH ?`

	return i.pageOf(ctx, hitsQuery, countQuery, match, page, pageSize)
}

// SearchByCategory returns one page of the hacks filed under category,
// newest first. Category names compare case-insensitively.
func (i *Index) SearchByCategory(ctx context.Context, category string, page, pageSize int) (*core.ResultPage, error) {
	category = strings.TrimSpace(category)

	hitsQuery := `
		SELECT ` + hackColumns + `
		FROM hacks h
		WHERE h.id IN (SELECT hack_id FROM hack_categories WHERE name = ?)
		ORDER BY h.date DESC, h.seq DESC
		LIMIT ? OFFSET ?`
	countQuery := `SELECT COUNT(DISTINCT hack_id) FROM hack_categories WHERE name = ?`

	return i.pageOf(ctx, hitsQuery, countQuery, category, page, pageSize)
}

// pageOf runs the page query and the count query concurrently.
func (i *Index) pageOf(ctx context.Context, hitsQuery, countQuery, arg string, page, pageSize int) (*core.ResultPage, error) {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	offset := pagination.Offset(page, pageSize)

	var hits []core.Hack
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hits, err = i.queryHacks(gctx, hitsQuery, arg, pageSize, offset)
		return err
	})
	g.Go(func() error {
		if err := i.db.QueryRowContext(gctx, countQuery, arg).Scan(&total); err != nil {
			return fmt.Errorf("counting hits: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &core.ResultPage{Results: hits, Total: total}, nil
}

// Get returns the hack with id.
func (i *Index) Get(ctx context.Context, id string) (*core.Hack, error) {
	hacks, err := i.queryHacks(ctx, `SELECT `+hackColumns+` FROM hacks h WHERE h.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(hacks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &hacks[0], nil
}

// TopCategories returns the limit most used categories, largest first.
func (i *Index) TopCategories(ctx context.Context, limit int) ([]core.CategoryCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := i.db.QueryContext(ctx, `
		SELECT MIN(name), COUNT(DISTINCT hack_id) AS hacks
		FROM hack_categories
		GROUP BY name
		ORDER BY hacks DESC, MIN(name)
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer i.closeRows(rows)

	categories := []core.CategoryCount{}
	for rows.Next() {
		var c core.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Similar returns up to limit hacks sharing title words or categories with
// the hack id, best match first, excluding the hack itself.
func (i *Index) Similar(ctx context.Context, id string, limit int) ([]core.Hack, error) {
	if limit <= 0 {
		limit = 6
	}
	ref, err := i.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	match := ftsMatch(similarityTerms(ref), " OR ")
	if match == "" {
		return []core.Hack{}, nil
	}

	return i.queryHacks(ctx, `
		SELECT `+hackColumns+`
		FROM hacks_fts f
		JOIN hacks h ON h.seq = f.rowid
		WHERE hacks_fts MATCH ? AND h.id != ?
		ORDER BY `+rankExpr+`
		LIMIT ?`, match, id, limit)
}

func (i *Index) queryHacks(ctx context.Context, query string, args ...any) ([]core.Hack, error) {
	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying hacks: %w", err)
	}
	defer i.closeRows(rows)

	hacks := []core.Hack{}
	for rows.Next() {
		h, err := scanHack(rows)
		if err != nil {
			return nil, err
		}
		hacks = append(hacks, h)
	}
	return hacks, rows.Err()
}

func (i *Index) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		i.logger.Warnf("failed to close rows: %v", err)
	}
}

func scanHack(rows *sql.Rows) (core.Hack, error) {
	var h core.Hack
	var categories, tags string
	err := rows.Scan(&h.ID, &h.Title, &h.URL, &h.Content, &h.Excerpt, &h.Source, &h.Author,
		&h.Date, &h.ImageURL, &categories, &tags)
	if err != nil {
		return h, fmt.Errorf("scanning hack: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &h.Categories); err != nil {
		return h, fmt.Errorf("decoding categories of %s: %w", h.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &h.Tags); err != nil {
		return h, fmt.Errorf("decoding tags of %s: %w", h.ID, err)
	}
	return h, nil
}

// ftsMatch turns free text into an FTS5 expression: every word becomes a
// quoted string, so user input can never be read as FTS5 syntax, and the
// words are joined with sep (" " for AND, " OR " for OR).
func ftsMatch(text, sep string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, `"`+w+`"`)
	}
	return strings.Join(quoted, sep)
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"into": true, "how": true, "your": true, "this": true, "that": true,
	"hack": true, "ikea": true, "diy": true,
}

// similarityTerms picks the words a similar hack is expected to share:
// significant title words and category words.
func similarityTerms(h *core.Hack) string {
	seen := make(map[string]bool)
	var terms []string
	add := func(text string) {
		for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			if len([]rune(w)) < 3 || stopWords[w] || seen[w] {
				continue
			}
			seen[w] = true
			terms = append(terms, w)
		}
	}
	add(h.Title)
	for _, c := range h.Categories {
		add(c)
	}
	return strings.Join(terms, " ")
}

// IsNotFound reports whether err means a missing hack.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
