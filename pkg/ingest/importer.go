package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/log"
	"github.com/rubiojr/hackfinder/pkg/metrics"
	"github.com/rubiojr/hackfinder/pkg/realtime"
)

// DefaultBatchSize is the number of records written per transaction.
const DefaultBatchSize = 500

// Store persists hacks. storage.Index implements it.
type Store interface {
	StoreHacks(ctx context.Context, hacks []core.Hack) (int, error)
}

// Result summarizes one import.
type Result struct {
	Read    int `json:"read"`
	Skipped int `json:"skipped"`
	Stored  int `json:"stored"`
}

// Importer writes normalized dump records to a Store.
type Importer struct {
	store     Store
	hub       *realtime.Hub
	batchSize int
	logger    *log.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithHub makes the importer announce every non-empty import on hub.
func WithHub(hub *realtime.Hub) Option {
	return func(i *Importer) { i.hub = hub }
}

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// NewImporter returns an importer writing to store.
func NewImporter(store Store, opts ...Option) *Importer {
	i := &Importer{
		store:     store,
		batchSize: DefaultBatchSize,
		logger:    log.ForService("ingest"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportFile imports a dump file. See Open for the supported formats.
func (i *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	rc, err := Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			i.logger.Warnf("closing %s: %v", path, err)
		}
	}()
	return i.ImportReader(ctx, rc, filepath.Base(path))
}

// ImportReader imports the records read from r. origin labels the batch
// in logs and index events. Records stored before an error are kept.
func (i *Importer) ImportReader(ctx context.Context, r io.Reader, origin string) (Result, error) {
	var res Result
	batch := make([]core.Hack, 0, i.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := i.store.StoreHacks(ctx, batch)
		if err != nil {
			return fmt.Errorf("storing batch: %w", err)
		}
		res.Stored += n
		batch = batch[:0]
		return nil
	}

	err := Decode(r, func(h core.Hack) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Read++
		h, ok := Normalize(h)
		if !ok {
			res.Skipped++
			i.logger.Debugf("%s: skipping record %d without url", origin, res.Read)
			return nil
		}
		batch = append(batch, h)
		if len(batch) >= i.batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}

	i.announce(res, origin)
	if err != nil {
		return res, fmt.Errorf("importing %s: %w", origin, err)
	}
	i.logger.Infof("imported %s: %d read, %d stored, %d skipped", origin, res.Read, res.Stored, res.Skipped)
	return res, nil
}

// ImportHacks stores already decoded records, as received by the API.
func (i *Importer) ImportHacks(ctx context.Context, hacks []core.Hack, origin string) (Result, error) {
	res := Result{Read: len(hacks)}
	clean := make([]core.Hack, 0, len(hacks))
	for _, h := range hacks {
		if h, ok := Normalize(h); ok {
			clean = append(clean, h)
		} else {
			res.Skipped++
		}
	}
	if len(clean) > 0 {
		n, err := i.store.StoreHacks(ctx, clean)
		if err != nil {
			return res, fmt.Errorf("storing hacks: %w", err)
		}
		res.Stored = n
	}
	i.announce(res, origin)
	return res, nil
}

func (i *Importer) announce(res Result, origin string) {
	if res.Stored == 0 {
		return
	}
	metrics.AddImported(res.Stored)
	if i.hub != nil {
		i.hub.Broadcast(realtime.NewIndexUpdated(res.Stored, origin))
	}
}
