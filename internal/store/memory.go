package store

import (
	"context"
	"strings"

	"github.com/refmine/refmine/internal/citation"
)

// MemStore is an in-memory Store used in tests and dry runs. It enforces the
// same uniqueness constraints as the SQLite implementation.
type MemStore struct {
	papers      []citation.Record
	noDOI       []citation.Record
	assessments map[int64]citation.Assessment
	keywords    map[int64][]string
	nextID      int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		assessments: make(map[int64]citation.Assessment),
		keywords:    make(map[int64][]string),
		nextID:      1,
	}
}

func (m *MemStore) InsertIdentified(_ context.Context, rec citation.Record) (int64, error) {
	for _, p := range m.papers {
		if p.DOI == rec.DOI {
			return 0, ErrDuplicate
		}
	}
	rec.ID = m.nextID
	m.nextID++
	m.papers = append(m.papers, rec)
	return rec.ID, nil
}

func (m *MemStore) InsertUnidentified(_ context.Context, rec citation.Record) (int64, error) {
	for _, p := range m.noDOI {
		if p.CompositeKey() == rec.CompositeKey() {
			return 0, ErrDuplicate
		}
	}
	rec.ID = m.nextID
	m.nextID++
	m.noDOI = append(m.noDOI, rec)
	return rec.ID, nil
}

func (m *MemStore) FindByDOI(_ context.Context, doi string) (*citation.Record, error) {
	for _, p := range m.papers {
		if p.DOI == doi {
			rec := p
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) FindByDOIFold(_ context.Context, doi string) (*citation.Record, error) {
	for _, p := range m.papers {
		if strings.EqualFold(p.DOI, doi) {
			rec := p
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStore) FindByDOIPrefix(_ context.Context, base string) ([]citation.Record, error) {
	var matches []citation.Record
	for _, p := range m.papers {
		if strings.HasPrefix(p.DOI, base) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (m *MemStore) FindByTitlePattern(_ context.Context, pattern string) ([]citation.Record, error) {
	// Emulate LIKE '%a%b%c%' containment on the lowercased title.
	parts := strings.Split(strings.Trim(pattern, "%"), "%")

	var matches []citation.Record
	for _, p := range m.papers {
		title := strings.ToLower(p.Title)
		ok := true
		rest := title
		for _, part := range parts {
			i := strings.Index(rest, part)
			if i < 0 {
				ok = false
				break
			}
			rest = rest[i+len(part):]
		}
		if ok {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (m *MemStore) UpsertAssessment(_ context.Context, a citation.Assessment) error {
	m.assessments[a.PaperID] = a
	return nil
}

func (m *MemStore) GetAssessment(_ context.Context, paperID int64) (*citation.Assessment, error) {
	a, ok := m.assessments[paperID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemStore) AddKeywords(_ context.Context, paperID int64, keywords []string) error {
	m.keywords[paperID] = append(m.keywords[paperID], keywords...)
	return nil
}

// Papers returns all identified records, for test assertions.
func (m *MemStore) Papers() []citation.Record { return m.papers }

// NoDOIPapers returns all unidentified records, for test assertions.
func (m *MemStore) NoDOIPapers() []citation.Record { return m.noDOI }

// Keywords returns the keywords attached to a paper, for test assertions.
func (m *MemStore) Keywords(paperID int64) []string { return m.keywords[paperID] }

func (m *MemStore) Close() error { return nil }
