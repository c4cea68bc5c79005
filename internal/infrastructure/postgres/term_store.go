package postgres

import (
	"context"
	"errors"

	domain "sheetsync/backend/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TermStore persists attribute taxonomies and their terms in PostgreSQL.
type TermStore struct {
	pool *pgxpool.Pool
}

// NewTermStore constructs a store.
func NewTermStore(pool *pgxpool.Pool) *TermStore {
	return &TermStore{pool: pool}
}

var _ domain.TermStore = (*TermStore)(nil)

// TaxonomyExists reports whether the taxonomy is registered.
func (r *TermStore) TaxonomyExists(ctx context.Context, taxonomy string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM taxonomies WHERE name = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, taxonomy).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// EnsureTaxonomy registers the taxonomy if it is missing.
func (r *TermStore) EnsureTaxonomy(ctx context.Context, taxonomy, label string) error {
	const query = `
INSERT INTO taxonomies (name, label)
VALUES ($1, $2)
ON CONFLICT (name) DO NOTHING
`
	_, err := r.pool.Exec(ctx, query, taxonomy, label)
	return err
}

// EnsureTerm returns the term for the given display name, creating it when
// missing. The slug is derived from the name.
func (r *TermStore) EnsureTerm(ctx context.Context, taxonomy, name string) (domain.Term, error) {
	slug := domain.Slugify(name)

	term, err := r.TermBySlug(ctx, taxonomy, slug)
	if err == nil {
		return term, nil
	}
	if !errors.Is(err, domain.ErrTermNotFound) {
		return domain.Term{}, err
	}

	const insert = `
INSERT INTO taxonomy_terms (taxonomy, slug, name)
VALUES ($1, $2, $3)
ON CONFLICT (taxonomy, slug) DO NOTHING
`
	if _, err := r.pool.Exec(ctx, insert, taxonomy, slug, name); err != nil {
		return domain.Term{}, err
	}
	return domain.Term{Slug: slug, Name: name}, nil
}

// TermBySlug fetches a term by its slug.
func (r *TermStore) TermBySlug(ctx context.Context, taxonomy, slug string) (domain.Term, error) {
	const query = `SELECT slug, name FROM taxonomy_terms WHERE taxonomy = $1 AND slug = $2`
	return r.scanTerm(r.pool.QueryRow(ctx, query, taxonomy, slug))
}

// TermByName fetches a term by its display name.
func (r *TermStore) TermByName(ctx context.Context, taxonomy, name string) (domain.Term, error) {
	const query = `SELECT slug, name FROM taxonomy_terms WHERE taxonomy = $1 AND name = $2 LIMIT 1`
	return r.scanTerm(r.pool.QueryRow(ctx, query, taxonomy, name))
}

// AssignTerms replaces the entry's term assignments for a taxonomy.
func (r *TermStore) AssignTerms(ctx context.Context, entryID int64, taxonomy string, slugs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM entry_terms WHERE entry_id = $1 AND taxonomy = $2`,
		entryID, taxonomy,
	); err != nil {
		return err
	}
	const insert = `
INSERT INTO entry_terms (entry_id, taxonomy, term_slug)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING
`
	for _, slug := range slugs {
		if _, err := tx.Exec(ctx, insert, entryID, taxonomy, slug); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *TermStore) scanTerm(row pgx.Row) (domain.Term, error) {
	var t domain.Term
	if err := row.Scan(&t.Slug, &t.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Term{}, domain.ErrTermNotFound
		}
		return domain.Term{}, err
	}
	return t, nil
}
