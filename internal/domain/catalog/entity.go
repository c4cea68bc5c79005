package catalog

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a catalog entry could not be located.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrTermNotFound indicates a taxonomy term could not be located.
	ErrTermNotFound = errors.New("taxonomy term not found")
	// ErrValidation signals a record missing a required field.
	ErrValidation = errors.New("product record failed validation")
	// ErrNoProductsProcessed means an entire batch yielded no successful outcome.
	ErrNoProductsProcessed = errors.New("no products were created or updated")
)

// ProductType tags a catalog entry with its behaviour.
type ProductType string

const (
	TypeSimple    ProductType = "simple"
	TypeVariable  ProductType = "variable"
	TypeVariation ProductType = "variation"
	TypeGrouped   ProductType = "grouped"
	TypeExternal  ProductType = "external"
)

// StatusPublish is the status forced onto newly created entries.
const StatusPublish = "publish"

// ParseProductType maps a wire type string onto a known product type,
// defaulting to simple.
func ParseProductType(s string) ProductType {
	switch ProductType(s) {
	case TypeVariable:
		return TypeVariable
	case TypeVariation:
		return TypeVariation
	case TypeGrouped:
		return TypeGrouped
	case TypeExternal:
		return TypeExternal
	default:
		return TypeSimple
	}
}

// Attribute describes one attribute attached to an entry. For taxonomy
// attributes Options holds term slugs; for custom attributes it holds raw
// values. Variation entries carry exactly one option per attribute.
type Attribute struct {
	Name      string
	Taxonomy  string
	Options   []string
	Visible   bool
	Variation bool
}

// IsTaxonomy reports whether the attribute is backed by a controlled
// vocabulary rather than free text.
func (a Attribute) IsTaxonomy() bool {
	return a.Taxonomy != ""
}

// Entry is a persisted product or product variation. Prices and stock are
// kept as strings: the wire format is string-typed and the store never
// interprets them.
type Entry struct {
	ID           int64
	Type         ProductType
	ParentID     int64
	Name         string
	SKU          string
	RegularPrice string
	SalePrice    string
	Stock        string
	Status       string
	Attributes   []Attribute
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Apply sets the provided scalar fields, leaving nil ones untouched.
func (e *Entry) Apply(name, sku, regularPrice, salePrice, stock, status *string) {
	if name != nil {
		e.Name = *name
	}
	if sku != nil {
		e.SKU = *sku
	}
	if regularPrice != nil {
		e.RegularPrice = *regularPrice
	}
	if salePrice != nil {
		e.SalePrice = *salePrice
	}
	if stock != nil {
		e.Stock = *stock
	}
	if status != nil {
		e.Status = *status
	}
	e.UpdatedAt = time.Now().UTC()
}
