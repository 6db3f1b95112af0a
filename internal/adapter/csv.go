package adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// table is a parsed delimited file with header-based cell access. The export
// tools emit columns in varying orders, so cells are addressed by name.
type table struct {
	cols map[string]int
	rows [][]string
}

// readTable parses a delimited file. Rows with the wrong field count are
// reported individually and skipped; the rest of the file is kept.
func readTable(r io.Reader, delim rune) (*table, []error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("reading header: %w", err)}
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		// Some exports prepend a BOM to the first column name.
		cols[strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF")] = i
	}

	t := &table{cols: cols}
	var errs []error

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		if len(row) != len(header) {
			errs = append(errs, fmt.Errorf("row %d: %d fields, want %d", line, len(row), len(header)))
			continue
		}
		t.rows = append(t.rows, row)
	}

	return t, errs
}

// cell returns the trimmed value of a named column, or "" when the column is
// absent or the cell empty. Absent column and empty cell both mean "missing".
func (t *table) cell(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ieeeAdapter parses IEEE Xplore CSV exports.
type ieeeAdapter struct{}

func (ieeeAdapter) Format() Format { return FormatIEEE }

func (ieeeAdapter) Parse(r io.Reader) ([]Entry, []error) {
	t, errs := readTable(r, ',')
	if t == nil {
		return nil, errs
	}

	var entries []Entry
	for _, row := range t.rows {
		// "IEEE Journals" / "IEEE Conferences" -> journals / conferences
		pubType := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(t.cell(row, "Document Identifier"), "IEEE", "")))

		entries = append(entries, Entry{
			DOI:          t.cell(row, "DOI"),
			Title:        t.cell(row, "Document Title"),
			Year:         parseYear(t.cell(row, "Publication Year")),
			Authors:      t.cell(row, "Authors"),
			Venue:        t.cell(row, "Publication Title"),
			Volume:       t.cell(row, "Volume"),
			Issue:        t.cell(row, "Issue"),
			DownloadLink: t.cell(row, "PDF Link"),
			PubType:      pubType,
			Keywords:     splitKeywords(t.cell(row, "Author Keywords"), t.cell(row, "IEEE Terms")),
		})
	}
	return entries, errs
}

// splitKeywords merges semicolon-separated keyword columns.
func splitKeywords(cells ...string) []string {
	var kws []string
	for _, c := range cells {
		for _, k := range strings.Split(c, ";") {
			if k = strings.TrimSpace(k); k != "" {
				kws = append(kws, k)
			}
		}
	}
	return kws
}

// springerAdapter parses SpringerLink CSV exports.
type springerAdapter struct{}

func (springerAdapter) Format() Format { return FormatSpringer }

func (springerAdapter) Parse(r io.Reader) ([]Entry, []error) {
	t, errs := readTable(r, ',')
	if t == nil {
		return nil, errs
	}

	var entries []Entry
	for _, row := range t.rows {
		// SpringerLink only has one "Publication Title" column; for books the
		// venue actually lives in "Book Series Title", keyed off Content Type.
		contentType := t.cell(row, "Content Type")
		venue := t.cell(row, "Publication Title")
		if contentType == "Book" {
			venue = t.cell(row, "Book Series Title")
		}

		entries = append(entries, Entry{
			DOI:          t.cell(row, "Item DOI"),
			Title:        t.cell(row, "Item Title"),
			Year:         parseYear(t.cell(row, "Publication Year")),
			Authors:      t.cell(row, "Authors"),
			Venue:        venue,
			Volume:       t.cell(row, "Journal Volume"),
			Issue:        t.cell(row, "Journal Issue"),
			DownloadLink: t.cell(row, "URL"),
			PubType:      contentType,
		})
	}
	return entries, errs
}

// dblpAdapter parses DBLP CSV exports.
type dblpAdapter struct{}

func (dblpAdapter) Format() Format { return FormatDBLP }

func (dblpAdapter) Parse(r io.Reader) ([]Entry, []error) {
	t, errs := readTable(r, ',')
	if t == nil {
		return nil, errs
	}

	var entries []Entry
	for _, row := range t.rows {
		link := t.cell(row, "downloadlink")
		if link == "" {
			// DBLP's publication URL is the next best thing to a PDF link.
			link = t.cell(row, "publication")
		}

		entries = append(entries, Entry{
			DOI:          t.cell(row, "doi"),
			Title:        t.cell(row, "title"),
			Year:         parseYear(t.cell(row, "year")),
			Authors:      t.cell(row, "authors"),
			Venue:        t.cell(row, "venueName"),
			Volume:       t.cell(row, "volume"),
			Issue:        t.cell(row, "issue"),
			DownloadLink: link,
			PubType:      t.cell(row, "type"),
		})
	}
	return entries, errs
}

// proquestAdapter parses ProQuest exports, which are semicolon-delimited.
type proquestAdapter struct{}

func (proquestAdapter) Format() Format { return FormatProQuest }

func (proquestAdapter) Parse(r io.Reader) ([]Entry, []error) {
	t, errs := readTable(r, ';')
	if t == nil {
		return nil, errs
	}

	var entries []Entry
	for _, row := range t.rows {
		entries = append(entries, Entry{
			DOI:          t.cell(row, "digitalObjectIdentifier"),
			Title:        t.cell(row, "Title"),
			Year:         parseYear(t.cell(row, "year")),
			Authors:      t.cell(row, "Authors"),
			Venue:        t.cell(row, "pubtitle"),
			Volume:       t.cell(row, "volume"),
			Issue:        t.cell(row, "issue"),
			DownloadLink: t.cell(row, "DocumentURL"),
			PubType:      t.cell(row, "documentType"),
		})
	}
	return entries, errs
}
