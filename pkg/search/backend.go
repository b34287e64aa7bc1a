package search

import (
	"context"

	"github.com/rubiojr/hackfinder/pkg/core"
)

// Backend executes searches. Implementations rank results; the controller
// only pages through them.
type Backend interface {
	// SearchByText returns page (1-based) of the hacks matching query.
	SearchByText(ctx context.Context, query string, page, pageSize int) (*core.ResultPage, error)
	// SearchByCategory returns page (1-based) of the hacks filed under
	// category.
	SearchByCategory(ctx context.Context, category string, page, pageSize int) (*core.ResultPage, error)
}

// CategoryLister is implemented by backends that can list the most used
// categories, shown while no search is active.
type CategoryLister interface {
	TopCategories(ctx context.Context, limit int) ([]core.CategoryCount, error)
}

// SimilarFinder is implemented by backends that can find hacks similar to
// a given one.
type SimilarFinder interface {
	Similar(ctx context.Context, id string, limit int) ([]core.Hack, error)
}
