// Package memory provides an in-memory implementation of the catalog and
// term stores. It backs the test suites; nothing here survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	domain "sheetsync/backend/internal/domain/catalog"
)

// Store keeps catalog entries, taxonomies and terms in process memory.
type Store struct {
	mu          sync.Mutex
	nextID      int64
	entries     map[int64]*domain.Entry
	taxonomies  map[string]string
	terms       map[string][]domain.Term
	assignments map[int64]map[string][]string
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		nextID:      1,
		entries:     make(map[int64]*domain.Entry),
		taxonomies:  make(map[string]string),
		terms:       make(map[string][]domain.Term),
		assignments: make(map[int64]map[string][]string),
	}
}

var (
	_ domain.Store     = (*Store)(nil)
	_ domain.TermStore = (*Store)(nil)
)

// Get fetches a copy of the entry by id.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEntry(entry), nil
}

// Save stores a copy of the entry, assigning an id when new.
func (s *Store) Save(ctx context.Context, entry *domain.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == 0 {
		entry.ID = s.nextID
		s.nextID++
	} else if _, ok := s.entries[entry.ID]; !ok {
		return 0, domain.ErrNotFound
	}
	if entry.ID >= s.nextID {
		s.nextID = entry.ID + 1
	}
	s.entries[entry.ID] = copyEntry(entry)
	return entry.ID, nil
}

// List returns light rows for every published entry, ordered by id.
func (s *Store) List(ctx context.Context) ([]domain.ListedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var listed []domain.ListedEntry
	for _, e := range s.entries {
		if e.Status != domain.StatusPublish {
			continue
		}
		listed = append(listed, domain.ListedEntry{ID: e.ID, Type: e.Type, ParentID: e.ParentID})
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].ID < listed[j].ID })
	return listed, nil
}

// TaxonomyExists reports whether the taxonomy is registered.
func (s *Store) TaxonomyExists(ctx context.Context, taxonomy string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.taxonomies[taxonomy]
	return ok, nil
}

// EnsureTaxonomy registers the taxonomy if it is missing.
func (s *Store) EnsureTaxonomy(ctx context.Context, taxonomy, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.taxonomies[taxonomy]; !ok {
		s.taxonomies[taxonomy] = label
	}
	return nil
}

// EnsureTerm returns the term for the display name, creating it when missing.
func (s *Store) EnsureTerm(ctx context.Context, taxonomy, name string) (domain.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slug := domain.Slugify(name)
	for _, t := range s.terms[taxonomy] {
		if t.Slug == slug {
			return t, nil
		}
	}
	term := domain.Term{Slug: slug, Name: name}
	s.terms[taxonomy] = append(s.terms[taxonomy], term)
	return term, nil
}

// TermBySlug fetches a term by its slug.
func (s *Store) TermBySlug(ctx context.Context, taxonomy, slug string) (domain.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.terms[taxonomy] {
		if t.Slug == slug {
			return t, nil
		}
	}
	return domain.Term{}, domain.ErrTermNotFound
}

// TermByName fetches a term by its display name.
func (s *Store) TermByName(ctx context.Context, taxonomy, name string) (domain.Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.terms[taxonomy] {
		if t.Name == name {
			return t, nil
		}
	}
	return domain.Term{}, domain.ErrTermNotFound
}

// AssignTerms replaces the entry's term assignments for a taxonomy.
func (s *Store) AssignTerms(ctx context.Context, entryID int64, taxonomy string, slugs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byTaxonomy, ok := s.assignments[entryID]
	if !ok {
		byTaxonomy = make(map[string][]string)
		s.assignments[entryID] = byTaxonomy
	}
	byTaxonomy[taxonomy] = append([]string(nil), slugs...)
	return nil
}

// AssignedTerms exposes the assignments for inspection in tests.
func (s *Store) AssignedTerms(entryID int64, taxonomy string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.assignments[entryID][taxonomy]...)
}

func copyEntry(e *domain.Entry) *domain.Entry {
	clone := *e
	clone.Attributes = make([]domain.Attribute, len(e.Attributes))
	for i, a := range e.Attributes {
		a.Options = append([]string(nil), a.Options...)
		clone.Attributes[i] = a
	}
	return &clone
}
