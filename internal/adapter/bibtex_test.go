package adapter

import (
	"strings"
	"testing"
)

const bibtexJournalEntry = `@article{smith2021,
  title = {Deep {Learning} for Graphs},
  author = {Smith, Jane and Doe, John},
  journal = {Machine Learning},
  year = {2021},
  volume = {110},
  number = {3},
  doi = {10.1007/s10994-021-05946-3},
  url = {https://link.springer.com/article/1},
  keywords = {graphs, deep learning}
}
`

func TestBibTeXParseJournal(t *testing.T) {
	a, err := For(FormatBibTeX)
	if err != nil {
		t.Fatal(err)
	}

	entries, errs := a.Parse(strings.NewReader(bibtexJournalEntry))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if e.Title != "Deep Learning for Graphs" {
		t.Errorf("Title = %q, want braces stripped", e.Title)
	}
	if e.DOI != "10.1007/s10994-021-05946-3" {
		t.Errorf("DOI = %q", e.DOI)
	}
	if e.Year != 2021 {
		t.Errorf("Year = %d, want 2021", e.Year)
	}
	if e.Authors != "Smith, Jane and Doe, John" {
		t.Errorf("Authors = %q", e.Authors)
	}
	if e.Venue != "Machine Learning" {
		t.Errorf("Venue = %q", e.Venue)
	}
	if e.Volume != "110" || e.Issue != "3" {
		t.Errorf("Volume/Issue = %q/%q", e.Volume, e.Issue)
	}
	if e.DownloadLink != "https://link.springer.com/article/1" {
		t.Errorf("DownloadLink = %q", e.DownloadLink)
	}
	if e.PubType != "journal" {
		t.Errorf("PubType = %q, want journal", e.PubType)
	}
	if len(e.Keywords) != 2 || e.Keywords[0] != "graphs" || e.Keywords[1] != "deep learning" {
		t.Errorf("Keywords = %v", e.Keywords)
	}
}

func TestBibTeXParseConference(t *testing.T) {
	src := `@inproceedings{lee2020,
  title = {Attention Models Revisited},
  author = {Lee, Kim},
  booktitle = {Proceedings of NeurIPS},
  year = {2020},
  doi = {10.5555/1111111}
}
`
	a, _ := For(FormatBibTeX)
	entries, errs := a.Parse(strings.NewReader(src))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Venue != "Proceedings of NeurIPS" {
		t.Errorf("Venue = %q, want booktitle", entries[0].Venue)
	}
	if entries[0].PubType != "conference" {
		t.Errorf("PubType = %q, want conference", entries[0].PubType)
	}
}

func TestBibTeXParseMissingTitle(t *testing.T) {
	src := `@article{broken2019,
  author = {Nobody},
  year = {2019}
}
@article{good2019,
  title = {A Fine Paper},
  author = {Somebody},
  journal = {Journal of Tests},
  year = {2019}
}
`
	a, _ := For(FormatBibTeX)
	entries, errs := a.Parse(strings.NewReader(src))
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if len(entries) != 1 || entries[0].Title != "A Fine Paper" {
		t.Fatalf("good entry lost: %+v", entries)
	}
}
