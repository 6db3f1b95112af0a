package match

import (
	"context"
	"testing"

	"github.com/refmine/refmine/internal/citation"
	"github.com/refmine/refmine/internal/store"
)

func seed(t *testing.T, s *store.MemStore, recs ...citation.Record) []int64 {
	t.Helper()
	ids := make([]int64, len(recs))
	for i, rec := range recs {
		id, err := s.InsertIdentified(context.Background(), rec)
		if err != nil {
			t.Fatal(err)
		}
		ids[i] = id
	}
	return ids
}

func TestMatchExactDOI(t *testing.T) {
	s := store.NewMemStore()
	ids := seed(t, s,
		citation.Record{DOI: "10.1016/j.a.2021.1", Title: "First"},
		citation.Record{DOI: "10.1016/j.a.2021.2", Title: "Second"},
	)

	id, ok := New(s).Match(context.Background(), "10.1016/j.a.2021.2", "")
	if !ok || id != ids[1] {
		t.Fatalf("Match = (%d, %t), want (%d, true)", id, ok, ids[1])
	}
}

func TestMatchCaseInsensitiveDOI(t *testing.T) {
	s := store.NewMemStore()
	ids := seed(t, s, citation.Record{DOI: "10.1109/TPAMI.2020.1", Title: "Mixed Case Era"})

	id, ok := New(s).Match(context.Background(), "10.1109/tpami.2020.1", "")
	if !ok || id != ids[0] {
		t.Fatalf("Match = (%d, %t), want fold hit", id, ok)
	}
}

func TestMatchDOIBasePrefix(t *testing.T) {
	s := store.NewMemStore()
	ids := seed(t, s, citation.Record{DOI: "10.1145/3292500.3330919", Title: "ACM Paper"})

	// Extracted from the PDF with a truncated suffix.
	id, ok := New(s).Match(context.Background(), "10.1145/3292500.33", "")
	if !ok || id != ids[0] {
		t.Fatalf("Match = (%d, %t), want base prefix hit", id, ok)
	}
}

func TestMatchTitleFallback(t *testing.T) {
	s := store.NewMemStore()
	ids := seed(t, s,
		citation.Record{DOI: "10.1016/t.1", Title: "Graph Neural Networks for Traffic Forecasting"},
		citation.Record{DOI: "10.1016/t.2", Title: "Quantum Chemistry with Learned Potentials"},
	)

	// No identifier; noisy title as extracted from the first page.
	id, ok := New(s).Match(context.Background(), "", "Graph Neural Networks for Traffic, Forecasting")
	if !ok || id != ids[0] {
		t.Fatalf("Match = (%d, %t), want title hit on %d", id, ok, ids[0])
	}
}

func TestMatchTitleTooShort(t *testing.T) {
	s := store.NewMemStore()
	seed(t, s, citation.Record{DOI: "10.1016/t.1", Title: "Graph Neural Networks"})

	// Three words or fewer is too little signal for windowing.
	if id, ok := New(s).Match(context.Background(), "", "Graph Neural Networks"); ok {
		t.Fatalf("Match = (%d, true), want no match on short title", id)
	}
}

// More than one distinct candidate means the title windows are not
// discriminating; picking one would silently attach the assessment to the
// wrong record.
func TestMatchTitleAmbiguous(t *testing.T) {
	s := store.NewMemStore()
	seed(t, s,
		citation.Record{DOI: "10.1016/t.1", Title: "Deep Learning for Time Series Analysis"},
		citation.Record{DOI: "10.1016/t.2", Title: "Deep Learning for Time Series Classification"},
	)

	if id, ok := New(s).Match(context.Background(), "", "Deep Learning for Time Series"); ok {
		t.Fatalf("Match = (%d, true), want ambiguity resolved to no match", id)
	}
}

func TestMatchNothing(t *testing.T) {
	s := store.NewMemStore()
	seed(t, s, citation.Record{DOI: "10.1016/t.1", Title: "Unrelated Work"})

	if id, ok := New(s).Match(context.Background(), "", ""); ok {
		t.Fatalf("Match = (%d, true), want no match on empty inputs", id)
	}
	if id, ok := New(s).Match(context.Background(), "10.9999/absent", "A Completely Different Paper Title"); ok {
		t.Fatalf("Match = (%d, true), want all layers to miss", id)
	}
}
