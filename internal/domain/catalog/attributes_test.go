package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttributeText(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []ParsedAttribute
	}{
		{
			name: "empty_input",
			text: "",
			want: nil,
		},
		{
			name: "missing_colon_skipped",
			text: "bad",
			want: nil,
		},
		{
			name: "two_pairs_ordered",
			text: "a:1|2, b:3",
			want: []ParsedAttribute{
				{Name: "a", Values: []string{"1", "2"}},
				{Name: "b", Values: []string{"3"}},
			},
		},
		{
			name: "whitespace_trimmed",
			text: "  Color : Red |  Blue ,  Size:L ",
			want: []ParsedAttribute{
				{Name: "Color", Values: []string{"Red", "Blue"}},
				{Name: "Size", Values: []string{"L"}},
			},
		},
		{
			name: "duplicate_values_dropped",
			text: "Color:Red|Blue|Red",
			want: []ParsedAttribute{
				{Name: "Color", Values: []string{"Red", "Blue"}},
			},
		},
		{
			name: "duplicate_names_not_merged",
			text: "Color:Red, Color:Blue",
			want: []ParsedAttribute{
				{Name: "Color", Values: []string{"Red"}},
				{Name: "Color", Values: []string{"Blue"}},
			},
		},
		{
			name: "trailing_pipe_keeps_empty_value",
			text: "Color:Red|",
			want: []ParsedAttribute{
				{Name: "Color", Values: []string{"Red", ""}},
			},
		},
		{
			name: "malformed_pair_between_valid_ones",
			text: "a:1, nope, b:2",
			want: []ParsedAttribute{
				{Name: "a", Values: []string{"1"}},
				{Name: "b", Values: []string{"2"}},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAttributeText(tc.text))
		})
	}
}

func TestSlugify(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Color", "color"},
		{"Shoe Size", "shoe-size"},
		{"  Mixed_Case Name ", "mixed-case-name"},
		{"Ünïcode Çafé", "ncode-af"},
		{"already-sluggy", "already-sluggy"},
		{"--weird--input--", "weird-input"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestTaxonomyName(t *testing.T) {
	assert.Equal(t, "pa_color", TaxonomyName("Color"))
	assert.Equal(t, "pa_shoe-size", TaxonomyName("Shoe Size"))
}
