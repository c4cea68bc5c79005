package postgres

import (
	"context"
	"errors"

	domain "sheetsync/backend/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStore persists catalog entries in PostgreSQL.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// NewCatalogStore constructs a store.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

var _ domain.Store = (*CatalogStore)(nil)

// Get fetches an entry and its attribute rows by id.
func (r *CatalogStore) Get(ctx context.Context, id int64) (*domain.Entry, error) {
	const query = `
SELECT id, type, parent_id, name, sku, regular_price, sale_price, stock, status, created_at, updated_at
FROM catalog_entries WHERE id = $1
`
	row := r.pool.QueryRow(ctx, query, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	attrs, err := r.attributesOf(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Attributes = attrs
	return entry, nil
}

// Save writes the entry and replaces its attribute rows atomically,
// assigning an id to new entries.
func (r *CatalogStore) Save(ctx context.Context, entry *domain.Entry) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if entry.ID == 0 {
		const insert = `
INSERT INTO catalog_entries (type, parent_id, name, sku, regular_price, sale_price, stock, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id
`
		err = tx.QueryRow(ctx, insert,
			string(entry.Type),
			entry.ParentID,
			entry.Name,
			entry.SKU,
			entry.RegularPrice,
			entry.SalePrice,
			entry.Stock,
			entry.Status,
			entry.CreatedAt,
			entry.UpdatedAt,
		).Scan(&entry.ID)
		if err != nil {
			return 0, err
		}
	} else {
		const update = `
UPDATE catalog_entries
SET type = $2,
    parent_id = $3,
    name = $4,
    sku = $5,
    regular_price = $6,
    sale_price = $7,
    stock = $8,
    status = $9,
    updated_at = $10
WHERE id = $1
`
		tag, err := tx.Exec(ctx, update,
			entry.ID,
			string(entry.Type),
			entry.ParentID,
			entry.Name,
			entry.SKU,
			entry.RegularPrice,
			entry.SalePrice,
			entry.Stock,
			entry.Status,
			entry.UpdatedAt,
		)
		if err != nil {
			return 0, err
		}
		if tag.RowsAffected() == 0 {
			return 0, domain.ErrNotFound
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entry_attributes WHERE entry_id = $1`, entry.ID); err != nil {
		return 0, err
	}
	const insertAttr = `
INSERT INTO entry_attributes (entry_id, position, name, taxonomy, options, visible, variation)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	for i, attr := range entry.Attributes {
		if _, err := tx.Exec(ctx, insertAttr,
			entry.ID,
			i,
			attr.Name,
			attr.Taxonomy,
			attr.Options,
			attr.Visible,
			attr.Variation,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// List returns every published entry as a light row, ordered by id.
func (r *CatalogStore) List(ctx context.Context) ([]domain.ListedEntry, error) {
	const query = `
SELECT id, type, parent_id
FROM catalog_entries
WHERE status = 'publish'
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listed []domain.ListedEntry
	for rows.Next() {
		var row domain.ListedEntry
		var typ string
		if err := rows.Scan(&row.ID, &typ, &row.ParentID); err != nil {
			return nil, err
		}
		row.Type = domain.ProductType(typ)
		listed = append(listed, row)
	}
	return listed, rows.Err()
}

func (r *CatalogStore) attributesOf(ctx context.Context, entryID int64) ([]domain.Attribute, error) {
	const query = `
SELECT name, taxonomy, options, visible, variation
FROM entry_attributes
WHERE entry_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attrs []domain.Attribute
	for rows.Next() {
		var a domain.Attribute
		if err := rows.Scan(&a.Name, &a.Taxonomy, &a.Options, &a.Visible, &a.Variation); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	var typ string
	err := row.Scan(
		&e.ID,
		&typ,
		&e.ParentID,
		&e.Name,
		&e.SKU,
		&e.RegularPrice,
		&e.SalePrice,
		&e.Stock,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Type = domain.ProductType(typ)
	return &e, nil
}
