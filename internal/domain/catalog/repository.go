package catalog

import "context"

// ListedEntry is the light row returned by a bulk catalog read.
type ListedEntry struct {
	ID       int64
	Type     ProductType
	ParentID int64
}

// Store defines persistence behaviours for catalog entries. Entries are
// fetched by id, mutated in memory and saved atomically; Save assigns and
// returns the id for new entries.
type Store interface {
	Get(ctx context.Context, id int64) (*Entry, error)
	Save(ctx context.Context, entry *Entry) (int64, error)
	List(ctx context.Context) ([]ListedEntry, error)
}

// Term is a named value inside a taxonomy.
type Term struct {
	Slug string
	Name string
}

// TermStore defines persistence behaviours for attribute taxonomies and
// their terms.
type TermStore interface {
	TaxonomyExists(ctx context.Context, taxonomy string) (bool, error)
	EnsureTaxonomy(ctx context.Context, taxonomy, label string) error
	EnsureTerm(ctx context.Context, taxonomy, name string) (Term, error)
	TermBySlug(ctx context.Context, taxonomy, slug string) (Term, error)
	TermByName(ctx context.Context, taxonomy, name string) (Term, error)
	AssignTerms(ctx context.Context, entryID int64, taxonomy string, slugs []string) error
}
