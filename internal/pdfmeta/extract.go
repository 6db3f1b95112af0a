// Package pdfmeta pulls candidate identifiers and titles out of PDF
// documents.
//
// Both extractions are best-effort: publishers place DOIs anywhere on the
// first pages and title metadata is frequently wrong or absent. Callers get
// empty strings, never errors, for documents that cannot be read; a batch
// must keep going past one broken file.
package pdfmeta

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/refmine/refmine/internal/doi"
)

// Metadata is what could be recovered from one document.
type Metadata struct {
	DOI   string
	Title string
}

// scanPages is how many leading pages are searched for a DOI; it is almost
// always on the first page.
const scanPages = 3

// minTitleLen filters out page furniture when guessing a title from text.
// Titles are rarely one or two words.
const minTitleLen = 20

// doiIndicators mark lines worth normalizing on the first pass over page
// text: resolver domains, identifier labels, publisher registrant prefixes,
// and front-matter markers that tend to share a line with the DOI.
var doiIndicators = []string{
	"doi.org",
	"doi",
	"digital object identifier",
	"10.1145",
	"10.1016",
	"10.1007",
	"10.1109",
	"copyright",
	"received",
	"accepted",
}

// Extract reads identifier and title candidates from a PDF. Unreadable
// documents yield zero-value metadata.
func Extract(path string) Metadata {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Metadata{}
	}
	defer f.Close()

	var m Metadata

	info := r.Trailer().Key("Info")
	m.DOI = metadataDOI(info)
	m.Title = metadataTitle(info)

	pages := pageTexts(r, scanPages)

	if m.DOI == "" {
		m.DOI = ScanForDOI(pages)
	}
	if m.Title == "" && len(pages) > 0 {
		m.Title = GuessTitle(pages[0])
	}

	return m
}

// Text returns the plain text of the first maxPages pages joined together,
// or all pages when maxPages <= 0. Used to build assessment prompts.
func Text(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 {
		maxPages = r.NumPage()
	}
	return strings.Join(pageTexts(r, maxPages), "\n"), nil
}

// PageCount returns the number of pages, for the pre-assessment size check.
func PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}

// metadataDOI checks the document info dictionary for an embedded
// identifier.
func metadataDOI(info pdf.Value) string {
	for _, key := range []string{"doi", "DOI", "Subject", "Keywords"} {
		v := info.Key(key)
		if v.Kind() != pdf.String {
			continue
		}
		if d := doi.Normalize(v.Text()); d != "" {
			return d
		}
	}
	return ""
}

func metadataTitle(info pdf.Value) string {
	v := info.Key("Title")
	if v.Kind() != pdf.String {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

// pageTexts extracts plain text from the first maxPages pages. Pages that
// fail to decode are skipped.
func pageTexts(r *pdf.Reader, maxPages int) []string {
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var pages []string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages
}

// ScanForDOI searches extracted page text for an identifier. Lines carrying
// an indicator substring are tried first; if none of them yields a DOI,
// every line is tried, since some layouts print a bare identifier with no
// surrounding marker at all.
func ScanForDOI(pages []string) string {
	for _, text := range pages {
		for _, line := range strings.Split(text, "\n") {
			if !hasIndicator(line) {
				continue
			}
			if d := doi.Normalize(line); d != "" {
				return d
			}
		}
	}

	for _, text := range pages {
		for _, line := range strings.Split(text, "\n") {
			if d := doi.Normalize(line); d != "" {
				return d
			}
		}
	}

	return ""
}

func hasIndicator(line string) bool {
	lower := strings.ToLower(line)
	for _, ind := range doiIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// GuessTitle takes the first substantial line of the first page. This is a
// heuristic, not a guarantee: running headers and journal banners are
// filtered, but a subtitle or author line can still win.
func GuessTitle(firstPage string) string {
	for _, line := range strings.Split(firstPage, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > minTitleLen && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a running header or footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "article") && strings.Contains(lower, "published") {
		return true
	}
	return false
}
