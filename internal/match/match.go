// Package match resolves an extracted document back to a stored record.
//
// The strategy is layered, cheapest and most precise first; each layer runs
// only when the previous one found nothing. The final title layer is a
// heuristic with known false positives on short common titles; ambiguous
// results are reported and treated as no match rather than picked from.
package match

import (
	"context"
	"log/slog"
	"strings"

	"github.com/refmine/refmine/internal/doi"
	"github.com/refmine/refmine/internal/store"
)

// titleWindowSize is the number of consecutive title words per search
// window.
const titleWindowSize = 3

// Matcher resolves (identifier, title) pairs against a store.
type Matcher struct {
	store store.Store
}

// New creates a matcher over the given store.
func New(s store.Store) *Matcher {
	return &Matcher{store: s}
}

// Match returns the id of the stored record a document belongs to, or false
// when no layer found one. Callers must skip unmatched documents, never
// guess.
func (m *Matcher) Match(ctx context.Context, identifier, title string) (int64, bool) {
	if identifier != "" {
		// Layer 1: exact identifier.
		if rec, err := m.store.FindByDOI(ctx, identifier); err == nil {
			return rec.ID, true
		}

		// Layer 2: case-insensitive, for records stored before
		// normalization case-folded consistently.
		if rec, err := m.store.FindByDOIFold(ctx, identifier); err == nil {
			return rec.ID, true
		}

		// Layer 3: identifiers differing only in a trailing sub-part share
		// a base.
		if recs, err := m.store.FindByDOIPrefix(ctx, doi.Base(identifier)); err == nil && len(recs) > 0 {
			return recs[0].ID, true
		}
	}

	if title != "" {
		return m.matchTitle(ctx, title)
	}

	return 0, false
}

// matchTitle is the fuzzy fallback: every contiguous window of three title
// words is searched as an in-order substring pattern against stored titles.
func (m *Matcher) matchTitle(ctx context.Context, title string) (int64, bool) {
	words := cleanTitleWords(title)
	if len(words) <= titleWindowSize {
		return 0, false
	}

	// Distinct candidate ids across all windows, in discovery order.
	var candidates []int64
	seen := make(map[int64]struct{})

	for i := 0; i+titleWindowSize <= len(words); i++ {
		pattern := "%" + strings.Join(words[i:i+titleWindowSize], "%") + "%"

		recs, err := m.store.FindByTitlePattern(ctx, pattern)
		if err != nil {
			slog.Warn("title pattern lookup failed", "pattern", pattern, "error", err)
			continue
		}
		for _, rec := range recs {
			if _, ok := seen[rec.ID]; !ok {
				seen[rec.ID] = struct{}{}
				candidates = append(candidates, rec.ID)
			}
		}
	}

	switch len(candidates) {
	case 0:
		return 0, false
	case 1:
		return candidates[0], true
	default:
		slog.Warn("ambiguous title match, skipping",
			"title", title, "candidates", candidates)
		return 0, false
	}
}

// cleanTitleWords lowercases a title, strips punctuation, and splits it into
// words.
func cleanTitleWords(title string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}
