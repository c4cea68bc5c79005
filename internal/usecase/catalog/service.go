package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "sheetsync/backend/internal/domain/catalog"

	"github.com/rs/zerolog"
)

// Service reconciles sheet batches against the catalog store and builds the
// catalog export. Processing is sequential; concurrent callers touching the
// same entries are not coordinated (last write wins).
type Service struct {
	store     domain.Store
	terms     domain.TermStore
	formatter *Formatter
	log       zerolog.Logger
	nowFunc   func() time.Time
}

// NewService constructs a catalog service.
func NewService(store domain.Store, terms domain.TermStore, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		terms:     terms,
		formatter: NewFormatter(terms),
		log:       log,
		nowFunc:   time.Now,
	}
}

// ReconcileResult reports batch outcomes. Processed holds one element per
// record that reached a terminal state: formatted entries for successes, the
// raw input record for per-record failures. Created and Updated hold only
// the formatted successes.
type ReconcileResult struct {
	Processed []domain.ProductRecord `json:"processed"`
	Created   []domain.ProductRecord `json:"created"`
	Updated   []domain.ProductRecord `json:"updated"`
}

// Reconcile maps a batch of input records onto create-or-update decisions.
// Per-record validation failures are recorded and never abort siblings; the
// call fails with ErrNoProductsProcessed only when nothing succeeded.
func (s *Service) Reconcile(ctx context.Context, records []domain.ProductRecord) (*ReconcileResult, error) {
	res := &ReconcileResult{
		Processed: []domain.ProductRecord{},
		Created:   []domain.ProductRecord{},
		Updated:   []domain.ProductRecord{},
	}

	var variations, others []domain.ProductRecord
	for _, rec := range records {
		if domain.ProductType(rec.Type) == domain.TypeVariation {
			variations = append(variations, rec)
		} else {
			others = append(others, rec)
		}
	}

	for _, rec := range others {
		var existing *domain.Entry
		if id, ok := rec.EntryID(); ok {
			entry, err := s.store.Get(ctx, id)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			existing = entry
		}

		related := relatedVariations(rec, variations)

		if existing == nil {
			created, err := s.createEntry(ctx, rec, related)
			if err != nil {
				if errors.Is(err, domain.ErrValidation) {
					s.log.Warn().Str("name", deref(rec.Name)).Msg("skipping record that failed validation")
					res.Processed = append(res.Processed, rec)
					continue
				}
				return nil, err
			}
			res.Created = append(res.Created, created)
			res.Processed = append(res.Processed, created)
			continue
		}

		updated, err := s.updateEntry(ctx, existing, rec, related)
		if err != nil {
			return nil, err
		}
		res.Updated = append(res.Updated, updated)
		res.Processed = append(res.Processed, updated)
	}

	if len(res.Created)+len(res.Updated) == 0 {
		return nil, domain.ErrNoProductsProcessed
	}
	return res, nil
}

// relatedVariations collects the variation records pointing at the record's
// id. Records without a numeric id match nothing, so brand-new parents never
// collect variations: the lookup runs against the input id, before any id is
// assigned.
func relatedVariations(rec domain.ProductRecord, variations []domain.ProductRecord) []domain.ProductRecord {
	id, ok := rec.EntryID()
	if !ok {
		return nil
	}
	var related []domain.ProductRecord
	for _, v := range variations {
		if pid, ok := v.ParentEntryID(); ok && pid == id {
			related = append(related, v)
		}
	}
	return related
}

func (s *Service) createEntry(ctx context.Context, rec domain.ProductRecord, related []domain.ProductRecord) (domain.ProductRecord, error) {
	if rec.Name == nil || strings.TrimSpace(*rec.Name) == "" {
		return domain.ProductRecord{}, domain.ErrValidation
	}

	now := s.nowFunc().UTC()
	entry := &domain.Entry{
		Type:      domain.ParseProductType(rec.Type),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pid, ok := rec.ParentEntryID(); ok {
		entry.ParentID = pid
	}
	entry.Apply(rec.Name, rec.SKU, rec.RegularPrice, nonEmpty(rec.SalePrice), nonEmpty(rec.Stock), rec.Status)
	entry.Status = domain.StatusPublish

	if entry.Type == domain.TypeVariable {
		if err := s.applyVariableAttributes(ctx, entry, rec.Attributes); err != nil {
			return domain.ProductRecord{}, err
		}
	}

	id, err := s.store.Save(ctx, entry)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	entry.ID = id

	if entry.Type == domain.TypeVariable {
		for _, attr := range entry.Attributes {
			if !attr.IsTaxonomy() {
				continue
			}
			if err := s.terms.AssignTerms(ctx, id, attr.Taxonomy, attr.Options); err != nil {
				return domain.ProductRecord{}, err
			}
		}
		if _, err := s.reconcileVariations(ctx, id, related); err != nil {
			return domain.ProductRecord{}, err
		}
	}

	return s.formatter.Format(ctx, entry), nil
}

func (s *Service) updateEntry(ctx context.Context, entry *domain.Entry, rec domain.ProductRecord, related []domain.ProductRecord) (domain.ProductRecord, error) {
	if pid, ok := rec.ParentEntryID(); ok {
		entry.ParentID = pid
	}
	// Unlike creation, the status supplied by the sheet is honoured here and
	// existing non-variation attributes are left untouched.
	entry.Apply(rec.Name, rec.SKU, rec.RegularPrice, nonEmpty(rec.SalePrice), nonEmpty(rec.Stock), rec.Status)

	if _, err := s.store.Save(ctx, entry); err != nil {
		return domain.ProductRecord{}, err
	}

	if entry.Type == domain.TypeVariable {
		if _, err := s.reconcileVariations(ctx, entry.ID, related); err != nil {
			return domain.ProductRecord{}, err
		}
	}

	return s.formatter.Format(ctx, entry), nil
}

// applyVariableAttributes parses the attribute text into taxonomy-backed
// attribute descriptors, registering taxonomies and terms as needed.
func (s *Service) applyVariableAttributes(ctx context.Context, entry *domain.Entry, attrText *string) error {
	if attrText == nil {
		return nil
	}
	for _, parsed := range domain.ParseAttributeText(*attrText) {
		if parsed.Name == "" {
			continue
		}
		taxonomy := domain.TaxonomyName(parsed.Name)
		if err := s.terms.EnsureTaxonomy(ctx, taxonomy, parsed.Name); err != nil {
			return err
		}

		var slugs []string
		for _, value := range parsed.Values {
			if value == "" {
				continue
			}
			term, err := s.terms.EnsureTerm(ctx, taxonomy, value)
			if err != nil {
				return err
			}
			slugs = append(slugs, term.Slug)
		}

		entry.Attributes = append(entry.Attributes, domain.Attribute{
			Name:      parsed.Name,
			Taxonomy:  taxonomy,
			Options:   slugs,
			Visible:   true,
			Variation: true,
		})
	}
	return nil
}

// reconcileVariations creates or updates the variation records attached to a
// parent. The formatted results are returned for the caller's benefit but
// are not counted in the batch-level tallies.
func (s *Service) reconcileVariations(ctx context.Context, parentID int64, records []domain.ProductRecord) ([]domain.ProductRecord, error) {
	var touched []domain.ProductRecord
	for _, rec := range records {
		if id, ok := rec.EntryID(); ok {
			entry, err := s.store.Get(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if entry.Type != domain.TypeVariation {
				continue
			}
			if err := s.applyVariationFields(ctx, entry, rec); err != nil {
				return nil, err
			}
			if _, err := s.store.Save(ctx, entry); err != nil {
				return nil, err
			}
			touched = append(touched, s.formatter.Format(ctx, entry))
			continue
		}

		now := s.nowFunc().UTC()
		entry := &domain.Entry{
			Type:      domain.TypeVariation,
			ParentID:  parentID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.applyVariationFields(ctx, entry, rec); err != nil {
			return nil, err
		}
		entry.Status = domain.StatusPublish
		id, err := s.store.Save(ctx, entry)
		if err != nil {
			return nil, err
		}
		entry.ID = id
		touched = append(touched, s.formatter.Format(ctx, entry))
	}
	return touched, nil
}

// applyVariationFields sets prices, stock and sku when non-empty and
// replaces the variation's attribute selections from the attribute text.
// Values are resolved to taxonomy term slugs, falling back to the raw
// name/value pair when no matching term exists.
func (s *Service) applyVariationFields(ctx context.Context, entry *domain.Entry, rec domain.ProductRecord) error {
	entry.Apply(nil, nonEmpty(rec.SKU), nonEmpty(rec.RegularPrice), nonEmpty(rec.SalePrice), nonEmpty(rec.Stock), nil)

	if rec.Attributes == nil {
		return nil
	}
	var attrs []domain.Attribute
	for _, parsed := range domain.ParseAttributeText(*rec.Attributes) {
		if parsed.Name == "" || len(parsed.Values) == 0 {
			continue
		}
		value := parsed.Values[0]
		if value == "" {
			continue
		}

		taxonomy := domain.TaxonomyName(parsed.Name)
		exists, err := s.terms.TaxonomyExists(ctx, taxonomy)
		if err != nil {
			return err
		}
		if exists {
			term, err := s.resolveTerm(ctx, taxonomy, value)
			if err == nil {
				attrs = append(attrs, domain.Attribute{
					Name:      parsed.Name,
					Taxonomy:  taxonomy,
					Options:   []string{term.Slug},
					Variation: true,
				})
				continue
			}
			if !errors.Is(err, domain.ErrTermNotFound) {
				return err
			}
		}

		attrs = append(attrs, domain.Attribute{
			Name:      parsed.Name,
			Options:   []string{value},
			Variation: true,
		})
	}
	entry.Attributes = attrs
	return nil
}

func (s *Service) resolveTerm(ctx context.Context, taxonomy, value string) (domain.Term, error) {
	term, err := s.terms.TermByName(ctx, taxonomy, value)
	if err == nil {
		return term, nil
	}
	if !errors.Is(err, domain.ErrTermNotFound) {
		return domain.Term{}, err
	}
	return s.terms.TermBySlug(ctx, taxonomy, domain.Slugify(value))
}

// FetchCatalog builds the export: every published product followed by its
// variations, then the whole collection reversed. The reversal is part of
// the wire contract the sheet client was built against.
func (s *Service) FetchCatalog(ctx context.Context) ([]domain.ProductRecord, error) {
	listed, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var records []domain.ProductRecord
	for _, row := range listed {
		if row.Type == domain.TypeVariation {
			continue
		}
		parent, err := s.store.Get(ctx, row.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, s.formatter.Format(ctx, parent))

		for _, child := range listed {
			if child.Type != domain.TypeVariation || child.ParentID != row.ID {
				continue
			}
			variation, err := s.store.Get(ctx, child.ID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			records = append(records, s.formatter.Format(ctx, variation))
		}
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func nonEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
