package catalog

import "strings"

// ParsedAttribute is one name/value-list pair from the attribute
// mini-language. Order follows the input text.
type ParsedAttribute struct {
	Name   string
	Values []string
}

// ParseAttributeText parses the compact attribute grammar
// "Name:Value|Value2, Name2:Value3". Pairs are comma-separated, values
// pipe-separated, whitespace trimmed. Pairs without a colon are skipped.
// Duplicate values within a pair are dropped; duplicate names across pairs
// are not merged. Empty value segments (trailing pipes and the like) are
// kept, so consumers must drop empty strings themselves.
func ParseAttributeText(text string) []ParsedAttribute {
	var parsed []ParsedAttribute
	for _, pair := range strings.Split(text, ",") {
		pair = strings.TrimSpace(pair)
		name, list, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}

		seen := make(map[string]struct{})
		var values []string
		for _, v := range strings.Split(list, "|") {
			v = strings.TrimSpace(v)
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}

		parsed = append(parsed, ParsedAttribute{
			Name:   strings.TrimSpace(name),
			Values: values,
		})
	}
	return parsed
}

// TaxonomyPrefix marks attribute taxonomies in the term store, mirroring the
// naming convention the sheet client was built against.
const TaxonomyPrefix = "pa_"

// TaxonomyName derives the taxonomy identifier for an attribute name.
func TaxonomyName(attribute string) string {
	return TaxonomyPrefix + Slugify(attribute)
}

// Slugify lowers a display name into a slug: lowercase, spaces and
// underscores become hyphens, everything outside [a-z0-9-] is dropped and
// runs of hyphens collapse.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ', r == '_', r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
