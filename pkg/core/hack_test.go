package core

import (
	"encoding/json"
	"testing"
)

func TestHackBody(t *testing.T) {
	tests := []struct {
		name string
		hack Hack
		want string
	}{
		{"content wins", Hack{Content: "full", Excerpt: "short"}, "full"},
		{"excerpt fallback", Hack{Excerpt: "short"}, "short"},
		{"nothing", Hack{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hack.Body(); got != tt.want {
				t.Errorf("Body() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHackDisplayFields(t *testing.T) {
	h := Hack{Title: "  ", Date: "2024-03-05T10:11:12", URL: "https://example.com/a"}

	if got := h.DisplayTitle(); got != UntitledHack {
		t.Errorf("DisplayTitle() = %q, want %q", got, UntitledHack)
	}
	if got := h.Day(); got != "2024-03-05" {
		t.Errorf("Day() = %q, want 2024-03-05", got)
	}
	if got := h.Key(); got != h.URL {
		t.Errorf("Key() = %q, want URL fallback", got)
	}

	short := Hack{ID: "x", Date: "2024"}
	if got := short.Day(); got != "2024" {
		t.Errorf("Day() = %q, want 2024", got)
	}
	if got := short.Key(); got != "x" {
		t.Errorf("Key() = %q, want x", got)
	}
}

func TestHackWireFormat(t *testing.T) {
	raw := `{"id":"1","title":"Desk","url":"u","content":"c","source":"blog","author":"a","date":"2023-01-01","categories":["workspace"],"tags":["alex"],"image_url":"i"}`

	var h Hack
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if h.ImageURL != "i" || h.Categories[0] != "workspace" || h.Tags[0] != "alex" {
		t.Fatalf("unexpected decode: %+v", h)
	}
}
