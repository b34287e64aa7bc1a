// Package ingest loads crawler dumps into the hack index.
//
// A dump is either a JSON array of hack records or one record per line
// (JSONL), optionally gzip (.gz) or zstd (.zst) compressed. Records are
// normalized before they are stored: fields are trimmed, records without
// a URL are skipped and missing IDs are derived from the source and URL
// so re-importing a dump updates hacks in place.
package ingest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rubiojr/hackfinder/pkg/core"
	"github.com/rubiojr/hackfinder/pkg/snippet"
)

// DefaultSource is assigned to records that do not name their source.
const DefaultSource = "import"

// excerptWindow bounds derived excerpts, in characters.
const excerptWindow = 200

// ErrUnsupportedFormat is returned for files the importer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported dump format")

var dumpExts = map[string]bool{
	".json":   true,
	".jsonl":  true,
	".ndjson": true,
}

// Supported reports whether path names a dump the importer can read,
// judging by its extension.
func Supported(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, c := range []string{".gz", ".zst"} {
		base = strings.TrimSuffix(base, c)
	}
	return dumpExts[filepath.Ext(base)]
}

type multiCloser struct {
	io.Reader
	closers []func() error
}

func (m *multiCloser) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open opens a dump file, transparently decompressing .gz and .zst files.
func Open(path string) (io.ReadCloser, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dump: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("reading gzip header: %w", err)
		}
		return &multiCloser{Reader: gz, closers: []func() error{gz.Close, f.Close}}, nil
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		return &multiCloser{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			f.Close,
		}}, nil
	default:
		return f, nil
	}
}

// Decode reads hack records from r, calling fn for each one in order.
// The stream may hold a JSON array or a sequence of JSON objects (JSONL).
// Decoding stops at the first error returned by fn.
func Decode(r io.Reader, fn func(core.Hack) error) error {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading dump: %w", err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("reading array start: %w", err)
		}
		for n := 1; dec.More(); n++ {
			var h core.Hack
			if err := dec.Decode(&h); err != nil {
				return fmt.Errorf("decoding record %d: %w", n, err)
			}
			if err := fn(h); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("reading array end: %w", err)
		}
		return nil
	}

	for n := 1; ; n++ {
		var h core.Hack
		err := dec.Decode(&h)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decoding record %d: %w", n, err)
		}
		if err := fn(h); err != nil {
			return err
		}
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// Normalize cleans a decoded record. It reports false for records that
// cannot be indexed (no URL).
func Normalize(h core.Hack) (core.Hack, bool) {
	h.URL = strings.TrimSpace(h.URL)
	if h.URL == "" {
		return h, false
	}
	h.Title = strings.TrimSpace(h.Title)
	h.Content = strings.TrimSpace(h.Content)
	h.Excerpt = strings.TrimSpace(h.Excerpt)
	h.Author = strings.TrimSpace(h.Author)
	h.Date = strings.TrimSpace(h.Date)
	h.ImageURL = strings.TrimSpace(h.ImageURL)
	h.Source = strings.TrimSpace(h.Source)
	if h.Source == "" {
		h.Source = DefaultSource
	}
	h.ID = strings.TrimSpace(h.ID)
	if h.ID == "" {
		h.ID = HackID(h.Source, h.URL)
	}
	if h.Excerpt == "" && h.Content != "" {
		h.Excerpt = snippet.ExtractWithOptions(h.Content, "", snippet.Options{Window: excerptWindow})
	}
	h.Categories = trimAll(h.Categories)
	h.Tags = trimAll(h.Tags)
	return h, true
}

// HackID derives the stable ID of a hack from its natural key.
func HackID(source, url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"|"+url)).String()
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
