package catalog

import (
	"context"
	"strings"
	"unicode"

	domain "sheetsync/backend/internal/domain/catalog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Formatter projects catalog entries into their wire record shape. It is
// read-only: term lookups resolve slugs to display names, nothing is
// mutated.
type Formatter struct {
	terms domain.TermStore
}

// NewFormatter constructs a formatter over the given term store.
func NewFormatter(terms domain.TermStore) *Formatter {
	return &Formatter{terms: terms}
}

// Format builds the wire record for an entry. Every scalar field is set
// explicitly; unset values become empty strings, never omitted keys.
func (f *Formatter) Format(ctx context.Context, entry *domain.Entry) domain.ProductRecord {
	id := domain.NewFlexID(entry.ID)
	parent := domain.StringFlexID("")
	if entry.ParentID != 0 {
		parent = domain.StringFlexID(domain.NewFlexID(entry.ParentID).String())
	}

	return domain.ProductRecord{
		ID:           &id,
		Type:         string(entry.Type),
		ParentID:     &parent,
		Name:         strPtr(entry.Name),
		SKU:          strPtr(entry.SKU),
		Attributes:   strPtr(f.attributeText(ctx, entry)),
		RegularPrice: strPtr(entry.RegularPrice),
		SalePrice:    strPtr(entry.SalePrice),
		Stock:        strPtr(entry.Stock),
		Status:       strPtr(entry.Status),
	}
}

// attributeText synthesizes the attributes field, whose shape depends on the
// entry type: variations list their selected value per attribute, variable
// products list every defined option, everything else lists only custom
// (non-taxonomy) attributes.
func (f *Formatter) attributeText(ctx context.Context, entry *domain.Entry) string {
	switch entry.Type {
	case domain.TypeVariation:
		return f.variationAttributes(ctx, entry)
	case domain.TypeVariable:
		return f.variableAttributes(ctx, entry)
	default:
		return customAttributes(entry)
	}
}

func (f *Formatter) variationAttributes(ctx context.Context, entry *domain.Entry) string {
	var pairs []string
	for _, attr := range entry.Attributes {
		if len(attr.Options) == 0 {
			continue
		}
		value := attr.Options[0]
		if attr.IsTaxonomy() {
			if term, err := f.terms.TermBySlug(ctx, attr.Taxonomy, value); err == nil {
				value = term.Name
			}
		}
		pairs = append(pairs, attributeLabel(attr)+":"+capitalize(value))
	}
	return strings.Join(pairs, ", ")
}

func (f *Formatter) variableAttributes(ctx context.Context, entry *domain.Entry) string {
	var groups []string
	for _, attr := range entry.Attributes {
		values := make([]string, 0, len(attr.Options))
		for _, opt := range attr.Options {
			if attr.IsTaxonomy() {
				if term, err := f.terms.TermBySlug(ctx, attr.Taxonomy, opt); err == nil {
					values = append(values, term.Name)
					continue
				}
			}
			values = append(values, opt)
		}
		groups = append(groups, attributeLabel(attr)+":"+strings.Join(values, "|"))
	}
	return strings.Join(groups, ", ")
}

func customAttributes(entry *domain.Entry) string {
	var pairs []string
	for _, attr := range entry.Attributes {
		if attr.IsTaxonomy() {
			continue
		}
		for _, v := range attr.Options {
			pairs = append(pairs, attr.Name+":"+v)
		}
	}
	return strings.Join(pairs, ", ")
}

// attributeLabel derives the display label: taxonomy attributes strip the
// taxonomy prefix and are title-cased, custom attributes use their name
// as-is.
func attributeLabel(attr domain.Attribute) string {
	if !attr.IsTaxonomy() {
		return attr.Name
	}
	label := strings.TrimPrefix(attr.Taxonomy, domain.TaxonomyPrefix)
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return titleCaser.String(label)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func strPtr(s string) *string {
	return &s
}
