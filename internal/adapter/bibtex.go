package adapter

import (
	"fmt"
	"io"
	"strings"

	"github.com/nickng/bibtex"
)

// bibtexAdapter parses BibTeX exports (ACM, ScienceDirect, Wiley).
type bibtexAdapter struct{}

func (bibtexAdapter) Format() Format { return FormatBibTeX }

func (bibtexAdapter) Parse(r io.Reader) ([]Entry, []error) {
	bib, err := bibtex.Parse(r)
	if err != nil {
		return nil, []error{fmt.Errorf("parsing bibtex: %w", err)}
	}

	var entries []Entry
	var errs []error

	for i, be := range bib.Entries {
		title := strings.NewReplacer("{", "", "}", "").Replace(bibField(be, "title"))
		if title == "" {
			errs = append(errs, fmt.Errorf("entry %d (%s): missing title", i+1, be.CiteName))
			continue
		}

		// Journal articles carry a "journal" field; conference papers use
		// "booktitle" instead.
		venue := bibField(be, "journal")
		pubType := "journal"
		if venue == "" {
			venue = bibField(be, "booktitle")
			pubType = "conference"
		}

		e := Entry{
			DOI:          bibField(be, "doi"),
			Title:        strings.TrimSpace(title),
			Year:         parseYear(bibField(be, "year")),
			Authors:      bibField(be, "author"),
			Venue:        venue,
			Volume:       bibField(be, "volume"),
			Issue:        bibField(be, "number"),
			DownloadLink: bibField(be, "url"),
			PubType:      pubType,
		}

		if kw := bibField(be, "keywords"); kw != "" {
			for _, k := range strings.Split(kw, ",") {
				if k = strings.TrimSpace(k); k != "" {
					e.Keywords = append(e.Keywords, k)
				}
			}
		}

		entries = append(entries, e)
	}

	return entries, errs
}

// bibField returns a trimmed field value, or "" when the entry lacks it.
func bibField(e *bibtex.BibEntry, name string) string {
	v, ok := e.Fields[name]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(v.String())
}
