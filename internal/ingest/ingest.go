// Package ingest turns raw adapter entries into deduplicated canonical
// records.
//
// The gate keeps an in-run cache of identifiers and composite keys so a
// batch avoids one store round-trip per repeated candidate; the store's
// uniqueness constraints remain the final authority either way.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/refmine/refmine/internal/adapter"
	"github.com/refmine/refmine/internal/citation"
	"github.com/refmine/refmine/internal/doi"
	"github.com/refmine/refmine/internal/store"
)

// Outcome classifies what happened to one entry.
type Outcome string

const (
	OutcomeInserted     Outcome = "inserted"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeNoIdentifier Outcome = "no_identifier"
)

// Stats is the per-file audit trail. Every entry of an input file lands in
// exactly one of these counters.
type Stats struct {
	Inserted     int `json:"inserted"`
	Duplicate    int `json:"duplicate"`
	NoIdentifier int `json:"no_identifier"`
	RowErrors    int `json:"row_errors"`
}

// acmRegistrant is the one registrant whose identifiers appear in the wild
// with truncated suffixes; same-base ACM DOIs are treated as the same work.
const acmRegistrant = "10.1145/"

// Gate decides insert / duplicate / no-identifier for each record. It is
// confined to a single ingestion run and must not be shared across runs.
type Gate struct {
	store    store.Store
	seenDOIs map[string]struct{}
	seenKeys map[string]struct{}
}

// NewGate creates a gate with an empty dedup cache.
func NewGate(s store.Store) *Gate {
	return &Gate{
		store:    s,
		seenDOIs: make(map[string]struct{}),
		seenKeys: make(map[string]struct{}),
	}
}

// Insert builds a canonical record from a raw entry and routes it to the
// identified or no-identifier table. The returned outcome is never an error:
// duplicates and missing identifiers are normal results.
func (g *Gate) Insert(ctx context.Context, e adapter.Entry, sourceFile string) (Outcome, error) {
	rec := buildRecord(e, sourceFile)

	if rec.DOI != "" {
		return g.insertIdentified(ctx, rec, e.Keywords)
	}
	return g.insertUnidentified(ctx, rec)
}

func (g *Gate) insertIdentified(ctx context.Context, rec citation.Record, keywords []string) (Outcome, error) {
	if _, ok := g.seenDOIs[g.cacheKey(rec.DOI)]; ok {
		return OutcomeDuplicate, nil
	}

	if _, err := g.store.FindByDOI(ctx, rec.DOI); err == nil {
		g.seenDOIs[g.cacheKey(rec.DOI)] = struct{}{}
		return OutcomeDuplicate, nil
	} else if !store.IsNotFound(err) {
		return "", fmt.Errorf("looking up %s: %w", rec.DOI, err)
	}

	// ACM suffixes get truncated inconsistently by export tools, so two
	// same-base ACM DOIs name the same work.
	if strings.HasPrefix(rec.DOI, acmRegistrant) {
		existing, err := g.store.FindByDOIPrefix(ctx, doi.Base(rec.DOI))
		if err != nil {
			return "", fmt.Errorf("prefix lookup for %s: %w", rec.DOI, err)
		}
		if len(existing) > 0 {
			g.seenDOIs[g.cacheKey(rec.DOI)] = struct{}{}
			return OutcomeDuplicate, nil
		}
	}

	id, err := g.store.InsertIdentified(ctx, rec)
	if store.IsDuplicate(err) {
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return "", fmt.Errorf("inserting %s: %w", rec.DOI, err)
	}

	g.seenDOIs[g.cacheKey(rec.DOI)] = struct{}{}

	if len(keywords) > 0 {
		if err := g.store.AddKeywords(ctx, id, keywords); err != nil {
			// Keywords are enrichment; losing them must not lose the record.
			slog.Warn("storing keywords failed", "doi", rec.DOI, "error", err)
		}
	}

	return OutcomeInserted, nil
}

func (g *Gate) insertUnidentified(ctx context.Context, rec citation.Record) (Outcome, error) {
	key := rec.CompositeKey()
	if _, ok := g.seenKeys[key]; ok {
		return OutcomeDuplicate, nil
	}

	_, err := g.store.InsertUnidentified(ctx, rec)
	if store.IsDuplicate(err) {
		g.seenKeys[key] = struct{}{}
		return OutcomeDuplicate, nil
	}
	if err != nil {
		return "", fmt.Errorf("inserting %q: %w", rec.Title, err)
	}

	g.seenKeys[key] = struct{}{}
	return OutcomeNoIdentifier, nil
}

// cacheKey collapses ACM DOIs to their base so an in-run truncated variant
// is caught without a store round-trip.
func (g *Gate) cacheKey(d string) string {
	if strings.HasPrefix(d, acmRegistrant) {
		return doi.Base(d)
	}
	return d
}

// buildRecord maps a raw entry to the canonical shape, normalizing the
// identifier and trimming the string fields.
func buildRecord(e adapter.Entry, sourceFile string) citation.Record {
	return citation.Record{
		DOI:          doi.Normalize(e.DOI),
		Title:        strings.TrimSpace(e.Title),
		Year:         e.Year,
		Authors:      strings.TrimSpace(e.Authors),
		Venue:        strings.TrimSpace(e.Venue),
		Volume:       strings.TrimSpace(e.Volume),
		Issue:        strings.TrimSpace(e.Issue),
		DownloadLink: strings.TrimSpace(e.DownloadLink),
		PubType:      strings.TrimSpace(e.PubType),
		SourceFile:   sourceFile,
	}
}
