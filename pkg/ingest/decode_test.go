package ingest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rubiojr/hackfinder/pkg/core"
)

const sampleJSONL = `{"source":"ikeahackers","title":"BILLY desk","url":"https://example.com/billy","content":"A desk made from a BILLY bookcase.","categories":["Desks"," Workspace "],"tags":["billy"]}
{"source":"reddit","title":"no url"}

{"title":"KALLAX bench","url":" https://example.com/kallax ","date":"2023-04-01T10:00:00"}
`

func decodeAll(t *testing.T, r *strings.Reader) []core.Hack {
	t.Helper()
	var got []core.Hack
	if err := Decode(r, func(h core.Hack) error {
		got = append(got, h)
		return nil
	}); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestDecodeJSONL(t *testing.T) {
	got := decodeAll(t, strings.NewReader(sampleJSONL))
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	if got[0].Title != "BILLY desk" || got[2].Title != "KALLAX bench" {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestDecodeArray(t *testing.T) {
	got := decodeAll(t, strings.NewReader(`  [{"url":"a"},{"url":"b"}]`))
	if len(got) != 2 || got[1].URL != "b" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if got := decodeAll(t, strings.NewReader(" \n")); len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestDecodeErrors(t *testing.T) {
	err := Decode(strings.NewReader(`{"url":"a"}
{broken`), func(core.Hack) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "record 2") {
		t.Fatalf("expected error on record 2, got %v", err)
	}

	stop := errors.New("stop")
	err = Decode(strings.NewReader(`[{"url":"a"},{"url":"b"}]`), func(core.Hack) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	if _, ok := Normalize(core.Hack{Title: "no url"}); ok {
		t.Error("record without url should be rejected")
	}

	h, ok := Normalize(core.Hack{
		URL:        " https://example.com/billy ",
		Title:      " BILLY desk ",
		Content:    strings.Repeat("word ", 100),
		Categories: []string{" Desks ", "", "Workspace"},
	})
	if !ok {
		t.Fatal("record should be accepted")
	}
	if h.URL != "https://example.com/billy" || h.Title != "BILLY desk" {
		t.Errorf("fields not trimmed: %+v", h)
	}
	if h.Source != DefaultSource {
		t.Errorf("Source = %q, want %q", h.Source, DefaultSource)
	}
	if h.ID != HackID(DefaultSource, h.URL) {
		t.Errorf("ID = %q, want derived id", h.ID)
	}
	if len(h.Categories) != 2 || h.Categories[0] != "Desks" {
		t.Errorf("Categories = %q", h.Categories)
	}
	if !strings.HasSuffix(h.Excerpt, "…") || len([]rune(h.Excerpt)) != excerptWindow+1 {
		t.Errorf("Excerpt not derived from content: %q", h.Excerpt)
	}

	kept, _ := Normalize(core.Hack{ID: "fixed", URL: "u", Excerpt: "short"})
	if kept.ID != "fixed" || kept.Excerpt != "short" {
		t.Errorf("explicit fields overwritten: %+v", kept)
	}
}

func TestHackIDStable(t *testing.T) {
	a := HackID("reddit", "https://example.com/x")
	if a != HackID("reddit", "https://example.com/x") {
		t.Error("HackID should be deterministic")
	}
	if a == HackID("ikeahackers", "https://example.com/x") {
		t.Error("HackID should depend on the source")
	}
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"dump.json":      true,
		"dump.JSONL":     true,
		"dump.ndjson.gz": true,
		"dump.jsonl.zst": true,
		"dump.csv":       false,
		"dump.gz":        false,
		".dump.json.swp": false,
		"notes.txt":      false,
	}
	for name, want := range tests {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}

func writeCompressed(t *testing.T, path string, data []byte) {
	t.Helper()
	var buf bytes.Buffer
	switch filepath.Ext(path) {
	case ".gz":
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
	case ".zst":
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(enc.EncodeAll(data, nil))
		if err := enc.Close(); err != nil {
			t.Fatal(err)
		}
	default:
		buf.Write(data)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenCompressed(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"plain.jsonl", "dump.jsonl.gz", "dump.jsonl.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeCompressed(t, path, []byte(sampleJSONL))

			rc, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()

			n := 0
			if err := Decode(rc, func(core.Hack) error { n++; return nil }); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if n != 3 {
				t.Errorf("decoded %d records, want 3", n)
			}
		})
	}

	if _, err := Open(filepath.Join(dir, "x.csv")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
