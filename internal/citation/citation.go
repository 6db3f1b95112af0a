// Package citation defines the core domain types for bibliographic records.
package citation

import (
	"strings"
	"time"
)

// Record is the canonical representation of one bibliographic entry,
// regardless of which export format it arrived in.
type Record struct {
	// ID is the store-assigned row id (0 before insertion).
	ID int64 `json:"id"`

	// DOI is the normalized Digital Object Identifier. Empty for records
	// routed to the no-identifier table.
	DOI string `json:"doi"`

	Title        string `json:"title"`
	Year         int    `json:"year"` // 0 = unknown
	Authors      string `json:"authors"`
	Venue        string `json:"venue"`
	Volume       string `json:"volume"`
	Issue        string `json:"issue,omitempty"`
	DownloadLink string `json:"download_link,omitempty"`

	// PubType depends on the source format (journal, conference, Book, ...).
	PubType string `json:"publication_type"`

	// SourceFile records which export file this entry came from.
	SourceFile string `json:"source_file"`
}

// CompositeKey returns the dedup key for records without an identifier:
// lowercased title and authors. Authors are treated as an opaque string,
// never parsed into a list.
func (r Record) CompositeKey() string {
	return strings.ToLower(strings.TrimSpace(r.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(r.Authors))
}

// Status values for an assessment row. A document that was screened out is
// distinct from one that was fully assessed.
const (
	StatusAssessed      = "assessed"
	StatusNotApplicable = "not_applicable"
	StatusSkipped       = "skipped"
	StatusError         = "error"
)

// Assessment holds the result of the LLM assessment phase for one record.
// At most one assessment exists per record.
type Assessment struct {
	PaperID     int64     `json:"paper_id"`
	Status      string    `json:"status"`
	Relevant    bool      `json:"relevant"`
	Significant bool      `json:"significant"`
	Category    string    `json:"category,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Takeaways   string    `json:"takeaways,omitempty"`
	AssessedAt  time.Time `json:"assessed_at"`
}
