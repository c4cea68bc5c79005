package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexID carries an id field that sheet clients send either as a JSON number
// or as a string (often empty). The original token is kept verbatim so that
// failed records can be echoed back unchanged.
type FlexID struct {
	raw    string
	quoted bool
}

// NewFlexID wraps a known numeric id.
func NewFlexID(id int64) FlexID {
	return FlexID{raw: strconv.FormatInt(id, 10)}
}

// StringFlexID wraps a string-typed id value.
func StringFlexID(s string) FlexID {
	return FlexID{raw: s, quoted: true}
}

// Int64 parses the id as a base-10 integer. The second return is false for
// empty or non-numeric values, which signal creation intent.
func (f FlexID) Int64() (int64, bool) {
	raw := strings.TrimSpace(f.raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (f FlexID) String() string {
	return f.raw
}

func (f *FlexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.raw = s
		f.quoted = true
		return nil
	}
	f.raw = string(b)
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	if f.quoted {
		return json.Marshal(f.raw)
	}
	if f.raw == "" {
		return []byte("null"), nil
	}
	return []byte(f.raw), nil
}

// ProductRecord is the wire form of a catalog entry. Pointer fields
// distinguish "absent" from "empty": absent fields are left untouched on
// update, while formatted output sets every field explicitly.
type ProductRecord struct {
	ID           *FlexID `json:"id,omitempty"`
	Type         string  `json:"type,omitempty"`
	ParentID     *FlexID `json:"parent_id,omitempty"`
	Name         *string `json:"name,omitempty"`
	SKU          *string `json:"sku,omitempty"`
	Attributes   *string `json:"attributes,omitempty"`
	RegularPrice *string `json:"regular_price,omitempty"`
	SalePrice    *string `json:"sale_price,omitempty"`
	Stock        *string `json:"stock,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// EntryID resolves the record's id when it is present and numeric.
func (r ProductRecord) EntryID() (int64, bool) {
	if r.ID == nil {
		return 0, false
	}
	return r.ID.Int64()
}

// ParentEntryID resolves the record's parent id when present and numeric.
func (r ProductRecord) ParentEntryID() (int64, bool) {
	if r.ParentID == nil {
		return 0, false
	}
	return r.ParentID.Int64()
}
