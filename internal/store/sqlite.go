package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/refmine/refmine/internal/citation"
	_ "modernc.org/sqlite"
)

// DB is the SQLite-backed Store.
type DB struct {
	db *sql.DB
}

const selectPaperFields = `id, doi, title, publication_year, authors, venue,
	volume, issue, download_link, publication_type, source_file`

// Open opens or creates the citation database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- Identified records, one per distinct normalized DOI
		CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			doi TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			publication_year INTEGER NOT NULL,
			authors TEXT,
			venue TEXT,
			volume TEXT,
			issue TEXT,
			download_link TEXT,
			publication_type TEXT,
			source_file TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi);

		-- Records without an identifier, keyed by lowercased title+authors
		CREATE TABLE IF NOT EXISTS papers_no_doi (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			publication_year INTEGER NOT NULL,
			authors TEXT,
			venue TEXT,
			volume TEXT,
			issue TEXT,
			download_link TEXT,
			publication_type TEXT,
			source_file TEXT,
			UNIQUE(title COLLATE NOCASE, authors COLLATE NOCASE)
		);

		-- One assessment per paper, replaced on re-run
		CREATE TABLE IF NOT EXISTS paper_assessments (
			paper_id INTEGER PRIMARY KEY,
			status TEXT NOT NULL,
			relevant INTEGER NOT NULL DEFAULT 0,
			significant INTEGER NOT NULL DEFAULT 0,
			category TEXT,
			summary TEXT,
			takeaways TEXT,
			assessed_at TEXT NOT NULL,
			FOREIGN KEY (paper_id) REFERENCES papers(id)
		);

		CREATE TABLE IF NOT EXISTS keywords (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			keyword TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS rel_keywords_papers (
			paper_id INTEGER NOT NULL,
			keyword_id INTEGER NOT NULL,
			PRIMARY KEY (paper_id, keyword_id)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// isConstraintErr reports whether err is a SQLite uniqueness violation.
func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// InsertIdentified inserts a record into the papers table.
func (d *DB) InsertIdentified(ctx context.Context, rec citation.Record) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO papers (doi, title, publication_year, authors, venue,
			volume, issue, download_link, publication_type, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DOI, rec.Title, rec.Year, rec.Authors, rec.Venue,
		rec.Volume, rec.Issue, rec.DownloadLink, rec.PubType, rec.SourceFile)
	if err != nil {
		if isConstraintErr(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("inserting paper: %w", err)
	}
	return res.LastInsertId()
}

// InsertUnidentified inserts a record into the papers_no_doi table.
func (d *DB) InsertUnidentified(ctx context.Context, rec citation.Record) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO papers_no_doi (title, publication_year, authors, venue,
			volume, issue, download_link, publication_type, source_file)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Title, rec.Year, rec.Authors, rec.Venue,
		rec.Volume, rec.Issue, rec.DownloadLink, rec.PubType, rec.SourceFile)
	if err != nil {
		if isConstraintErr(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("inserting no-doi paper: %w", err)
	}
	return res.LastInsertId()
}

// FindByDOI retrieves an identified record by exact DOI.
func (d *DB) FindByDOI(ctx context.Context, doi string) (*citation.Record, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+selectPaperFields+` FROM papers WHERE doi = ?`, doi)
	return scanPaper(row)
}

// FindByDOIFold retrieves an identified record by case-insensitive DOI.
func (d *DB) FindByDOIFold(ctx context.Context, doi string) (*citation.Record, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+selectPaperFields+` FROM papers WHERE LOWER(doi) = LOWER(?)`, doi)
	return scanPaper(row)
}

// FindByDOIPrefix retrieves all identified records sharing a DOI base.
func (d *DB) FindByDOIPrefix(ctx context.Context, base string) ([]citation.Record, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectPaperFields+` FROM papers WHERE doi LIKE ? || '%'`, base)
	if err != nil {
		return nil, fmt.Errorf("querying doi prefix: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// FindByTitlePattern retrieves identified records whose title contains the
// given LIKE pattern, case-insensitively.
func (d *DB) FindByTitlePattern(ctx context.Context, pattern string) ([]citation.Record, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectPaperFields+` FROM papers WHERE LOWER(title) LIKE ?`, pattern)
	if err != nil {
		return nil, fmt.Errorf("querying title pattern: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

// UpsertAssessment records an assessment outcome, replacing any prior one.
func (d *DB) UpsertAssessment(ctx context.Context, a citation.Assessment) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO paper_assessments
			(paper_id, status, relevant, significant, category, summary, takeaways, assessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.PaperID, a.Status, boolInt(a.Relevant), boolInt(a.Significant),
		a.Category, a.Summary, a.Takeaways, a.AssessedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upserting assessment: %w", err)
	}
	return nil
}

// GetAssessment retrieves the assessment for a paper.
func (d *DB) GetAssessment(ctx context.Context, paperID int64) (*citation.Assessment, error) {
	var a citation.Assessment
	var relevant, significant int
	var assessedAt string

	err := d.db.QueryRowContext(ctx, `
		SELECT paper_id, status, relevant, significant, category, summary, takeaways, assessed_at
		FROM paper_assessments WHERE paper_id = ?`, paperID).
		Scan(&a.PaperID, &a.Status, &relevant, &significant,
			&a.Category, &a.Summary, &a.Takeaways, &assessedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying assessment: %w", err)
	}

	a.Relevant = relevant != 0
	a.Significant = significant != 0
	a.AssessedAt, _ = parseTimestamp(assessedAt)
	return &a, nil
}

// AddKeywords attaches keywords to a paper, inserting keyword rows on first
// use. Duplicate relationships are ignored.
func (d *DB) AddKeywords(ctx context.Context, paperID int64, keywords []string) error {
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}

		if _, err := d.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO keywords (keyword) VALUES (?)`, kw); err != nil {
			return fmt.Errorf("inserting keyword %q: %w", kw, err)
		}

		var kwID int64
		if err := d.db.QueryRowContext(ctx,
			`SELECT id FROM keywords WHERE keyword = ?`, kw).Scan(&kwID); err != nil {
			return fmt.Errorf("looking up keyword %q: %w", kw, err)
		}

		if _, err := d.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO rel_keywords_papers (paper_id, keyword_id) VALUES (?, ?)`,
			paperID, kwID); err != nil {
			return fmt.Errorf("linking keyword %q: %w", kw, err)
		}
	}
	return nil
}

// ListIdentified returns all identified records in insertion order.
func (d *DB) ListIdentified(ctx context.Context) ([]citation.Record, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectPaperFields+` FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()
	return scanPapers(rows)
}

func scanPaper(row *sql.Row) (*citation.Record, error) {
	var rec citation.Record
	err := row.Scan(&rec.ID, &rec.DOI, &rec.Title, &rec.Year, &rec.Authors,
		&rec.Venue, &rec.Volume, &rec.Issue, &rec.DownloadLink,
		&rec.PubType, &rec.SourceFile)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning paper: %w", err)
	}
	return &rec, nil
}

func scanPapers(rows *sql.Rows) ([]citation.Record, error) {
	var recs []citation.Record
	for rows.Next() {
		var rec citation.Record
		if err := rows.Scan(&rec.ID, &rec.DOI, &rec.Title, &rec.Year, &rec.Authors,
			&rec.Venue, &rec.Volume, &rec.Issue, &rec.DownloadLink,
			&rec.PubType, &rec.SourceFile); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
