// Package adapter parses bibliography export files into raw entries.
//
// One adapter exists per supported export format. Adapters map the source's
// field names onto a common raw shape and resolve per-format quirks (venue
// disambiguation, fallback columns, odd delimiters); downstream code never
// branches on the source format.
package adapter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format identifies a supported export format. The set is closed: adding a
// format means adding an adapter, not branching on strings elsewhere.
type Format string

const (
	FormatBibTeX   Format = "bibtex"
	FormatIEEE     Format = "ieee"
	FormatSpringer Format = "springer"
	FormatDBLP     Format = "dblp"
	FormatProQuest Format = "proquest"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatBibTeX, FormatIEEE, FormatSpringer, FormatDBLP, FormatProQuest:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %q", s)
	}
}

// Entry is one raw bibliographic entry with source fields mapped onto a
// common shape. No identifier normalization has been applied yet; DOI holds
// whatever string the export carried.
type Entry struct {
	DOI          string
	Title        string
	Year         int
	Authors      string
	Venue        string
	Volume       string
	Issue        string
	DownloadLink string
	PubType      string
	Keywords     []string
}

// Adapter parses one export format. Parse accumulates per-row errors and
// keeps going; one malformed row must not lose the rest of the file.
type Adapter interface {
	Format() Format
	Parse(r io.Reader) ([]Entry, []error)
}

// For returns the adapter for a format.
func For(f Format) (Adapter, error) {
	switch f {
	case FormatBibTeX:
		return bibtexAdapter{}, nil
	case FormatIEEE:
		return ieeeAdapter{}, nil
	case FormatSpringer:
		return springerAdapter{}, nil
	case FormatDBLP:
		return dblpAdapter{}, nil
	case FormatProQuest:
		return proquestAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %q", f)
	}
}

// parseYear converts a year cell to an int, tolerating empty values and
// float-formatted exports ("2021.0"). Unparseable years become 0 (unknown).
func parseYear(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i := strings.IndexByte(s, '.'); i > 0 {
		s = s[:i]
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return y
}
