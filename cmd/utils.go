package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rubiojr/hackfinder/pkg/client"
	"github.com/rubiojr/hackfinder/pkg/config"
	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/search"
	"github.com/rubiojr/hackfinder/pkg/storage"
)

// Backend is what the search commands need from a backend. Both the local
// index and the HTTP client implement it.
type Backend interface {
	search.Backend
	search.CategoryLister
	search.SimilarFinder
	Get(ctx context.Context, id string) (*core.Hack, error)
}

var (
	_ Backend = (*storage.Index)(nil)
	_ Backend = (*client.Client)(nil)
)

// loadConfig loads the configuration file
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openIndex opens the local index, creating its directory if needed.
func openIndex(cfg *config.Config) (*storage.Index, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	idx, err := storage.Open(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	return idx, nil
}

// openBackend returns the configured backend and a function releasing it.
func openBackend(cfg *config.Config) (Backend, func(), error) {
	switch cfg.Backend.Type {
	case config.BackendRemote:
		c, err := client.New(cfg.Backend.URL, cfg.Backend.Timeout.Duration)
		if err != nil {
			return nil, nil, fmt.Errorf("creating client: %w", err)
		}
		return c, func() {}, nil
	default:
		idx, err := openIndex(cfg)
		if err != nil {
			return nil, nil, err
		}
		return idx, func() {
			if err := idx.Close(); err != nil {
				fmt.Printf("Warning: failed to close index: %v\n", err)
			}
		}, nil
	}
}

// isNotFound reports a missing hack from either backend.
func isNotFound(err error) bool {
	return storage.IsNotFound(err) || client.IsNotFound(err)
}

// userError turns controller validation errors into command errors.
func userError(err error) error {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return errors.New("a search query is required")
	case errors.Is(err, search.ErrEmptyCategory):
		return errors.New("a category name is required")
	case errors.Is(err, search.ErrInvalidPage):
		return fmt.Errorf("page out of range: %w", err)
	}
	return err
}
