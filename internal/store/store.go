// Package store persists canonical citation records and assessments.
//
// The pipeline treats persistence as an injected collaborator: dedup and
// matching logic depend only on the Store interface, so they test against the
// in-memory implementation without a real database.
package store

import (
	"context"
	"errors"

	"github.com/refmine/refmine/internal/citation"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrDuplicate indicates an insert hit a uniqueness constraint. It is a
	// normal dedup outcome, not a failure.
	ErrDuplicate = errors.New("duplicate record")

	// ErrNotFound indicates no record matched a lookup.
	ErrNotFound = errors.New("record not found")
)

// Store is the persistence contract required by the pipeline.
//
// InsertIdentified is unique-constrained on the normalized DOI;
// InsertUnidentified on the lowercased (title, authors) pair. Both return
// ErrDuplicate on constraint violation and the new row id otherwise.
type Store interface {
	InsertIdentified(ctx context.Context, rec citation.Record) (int64, error)
	InsertUnidentified(ctx context.Context, rec citation.Record) (int64, error)

	// FindByDOI is case-sensitive; FindByDOIFold covers records inserted
	// before normalization case-folded consistently. Both return ErrNotFound
	// on a miss.
	FindByDOI(ctx context.Context, doi string) (*citation.Record, error)
	FindByDOIFold(ctx context.Context, doi string) (*citation.Record, error)

	// FindByDOIPrefix returns all identified records whose DOI starts with
	// the given base.
	FindByDOIPrefix(ctx context.Context, base string) ([]citation.Record, error)

	// FindByTitlePattern returns identified records whose lowercased title
	// contains the given SQL LIKE pattern.
	FindByTitlePattern(ctx context.Context, pattern string) ([]citation.Record, error)

	// UpsertAssessment records the assessment outcome for a paper,
	// replacing any previous attempt.
	UpsertAssessment(ctx context.Context, a citation.Assessment) error

	// GetAssessment returns the stored assessment for a paper, or
	// ErrNotFound if none was ever recorded.
	GetAssessment(ctx context.Context, paperID int64) (*citation.Assessment, error)

	// AddKeywords attaches keywords to an identified record, creating
	// keyword rows as needed.
	AddKeywords(ctx context.Context, paperID int64, keywords []string) error

	Close() error
}

// IsDuplicate reports whether err is a uniqueness-constraint outcome.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
