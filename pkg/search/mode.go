package search

import (
	"fmt"
	"strings"
)

// Mode is the active query mode of a Controller.
type Mode int

const (
	// ModeIdle shows no results.
	ModeIdle Mode = iota
	// ModeTextQuery shows results for a free-text query.
	ModeTextQuery
	// ModeCategory shows the hacks filed under one category.
	ModeCategory
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeTextQuery:
		return "text"
	case ModeCategory:
		return "category"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "idle", "":
		return ModeIdle, nil
	case "text", "query":
		return ModeTextQuery, nil
	case "category":
		return ModeCategory, nil
	}
	return ModeIdle, fmt.Errorf("%w: unknown mode %q", ErrInvalidTransition, s)
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
