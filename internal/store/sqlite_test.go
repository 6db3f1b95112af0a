package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refmine/refmine/internal/citation"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertIdentifiedUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := citation.Record{
		DOI:          "10.1016/j.test.2021.1",
		Title:        "A Stored Paper",
		Year:         2021,
		Authors:      "A. Writer; B. Writer",
		Venue:        "Journal of Storage",
		Volume:       "7",
		Issue:        "2",
		DownloadLink: "https://example.org/1.pdf",
		PubType:      "journals",
		SourceFile:   "ieee.csv",
	}

	id, err := db.InsertIdentified(ctx, rec)
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = db.InsertIdentified(ctx, rec)
	assert.True(t, IsDuplicate(err), "second insert of same DOI must be ErrDuplicate, got %v", err)

	got, err := db.FindByDOI(ctx, rec.DOI)
	require.NoError(t, err)
	rec.ID = id
	assert.Equal(t, rec, *got)
}

func TestInsertUnidentifiedCompositeUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := citation.Record{Title: "No Identifier Here", Authors: "C. Ghost", Year: 2019}
	_, err := db.InsertUnidentified(ctx, rec)
	require.NoError(t, err)

	// Same title and authors differing only in case hits the constraint.
	rec.Title = "NO IDENTIFIER HERE"
	rec.Authors = "c. ghost"
	_, err = db.InsertUnidentified(ctx, rec)
	assert.True(t, IsDuplicate(err), "got %v", err)

	// Different authors is a different work.
	rec.Authors = "D. Other"
	_, err = db.InsertUnidentified(ctx, rec)
	assert.NoError(t, err)
}

func TestFindByDOIVariants(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.InsertIdentified(ctx, citation.Record{DOI: "10.1145/1234567.891", Title: "ACM Work"})
	require.NoError(t, err)

	_, err = db.FindByDOI(ctx, "10.1145/9999999.999")
	assert.True(t, IsNotFound(err))

	got, err := db.FindByDOIFold(ctx, "10.1145/1234567.891")
	require.NoError(t, err)
	assert.Equal(t, "ACM Work", got.Title)

	recs, err := db.FindByDOIPrefix(ctx, "10.1145/1234567")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ACM Work", recs[0].Title)

	recs, err = db.FindByDOIPrefix(ctx, "10.1145/7654321")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFindByTitlePattern(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.InsertIdentified(ctx, citation.Record{
		DOI:   "10.1016/tp.1",
		Title: "Graph Neural Networks for Traffic Forecasting",
	})
	require.NoError(t, err)

	recs, err := db.FindByTitlePattern(ctx, "%graph%neural%networks%")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = db.FindByTitlePattern(ctx, "%quantum%chemistry%models%")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestUpsertAssessment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.InsertIdentified(ctx, citation.Record{DOI: "10.1016/as.1", Title: "Assessed"})
	require.NoError(t, err)

	_, err = db.GetAssessment(ctx, id)
	assert.True(t, IsNotFound(err))

	// Sub-second precision must survive the round-trip.
	now := time.Date(2024, 3, 15, 10, 30, 0, 123456789, time.UTC)
	first := citation.Assessment{
		PaperID:    id,
		Status:     citation.StatusSkipped,
		AssessedAt: now,
	}
	require.NoError(t, db.UpsertAssessment(ctx, first))

	second := citation.Assessment{
		PaperID:     id,
		Status:      citation.StatusAssessed,
		Relevant:    true,
		Significant: true,
		Category:    "methodology",
		Summary:     "Does a thing.",
		Takeaways:   "The thing works.",
		AssessedAt:  now.Add(time.Hour),
	}
	require.NoError(t, db.UpsertAssessment(ctx, second))

	got, err := db.GetAssessment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, citation.StatusAssessed, got.Status)
	assert.True(t, got.Relevant)
	assert.True(t, got.Significant)
	assert.Equal(t, "methodology", got.Category)
	assert.Equal(t, "Does a thing.", got.Summary)
	assert.Equal(t, "The thing works.", got.Takeaways)
	assert.Equal(t, second.AssessedAt, got.AssessedAt)
}

func TestAddKeywords(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id1, err := db.InsertIdentified(ctx, citation.Record{DOI: "10.1016/kw.1", Title: "One"})
	require.NoError(t, err)
	id2, err := db.InsertIdentified(ctx, citation.Record{DOI: "10.1016/kw.2", Title: "Two"})
	require.NoError(t, err)

	// Shared keyword, repeated attachment, blank entries.
	require.NoError(t, db.AddKeywords(ctx, id1, []string{"graphs", "attention", ""}))
	require.NoError(t, db.AddKeywords(ctx, id1, []string{"graphs"}))
	require.NoError(t, db.AddKeywords(ctx, id2, []string{"graphs"}))

	assert.ElementsMatch(t, []string{"graphs", "attention"}, paperKeywords(t, db, id1))
	assert.ElementsMatch(t, []string{"graphs"}, paperKeywords(t, db, id2))

	// "graphs" is shared, not duplicated in the keywords table.
	var distinct int
	require.NoError(t, db.db.QueryRow(`SELECT COUNT(*) FROM keywords`).Scan(&distinct))
	assert.Equal(t, 2, distinct)
}

func paperKeywords(t *testing.T, db *DB, paperID int64) []string {
	t.Helper()
	rows, err := db.db.Query(`
		SELECT k.keyword FROM keywords k
		JOIN rel_keywords_papers r ON r.keyword_id = k.id
		WHERE r.paper_id = ?`, paperID)
	require.NoError(t, err)
	defer rows.Close()

	var kws []string
	for rows.Next() {
		var kw string
		require.NoError(t, rows.Scan(&kw))
		kws = append(kws, kw)
	}
	require.NoError(t, rows.Err())
	return kws
}

func TestListIdentified(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, d := range []string{"10.1016/l.1", "10.1016/l.2", "10.1016/l.3"} {
		_, err := db.InsertIdentified(ctx, citation.Record{DOI: d, Title: "t " + d})
		require.NoError(t, err)
	}

	recs, err := db.ListIdentified(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "10.1016/l.1", recs[0].DOI)
	assert.Equal(t, "10.1016/l.3", recs[2].DOI)
}
