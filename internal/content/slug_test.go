package content

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ampersand", input: "Bridges & Roads", expected: "bridges-roads"},
		{name: "simple title", input: "Hello World", expected: "hello-world"},
		{name: "underscores", input: "steel_frame  works", expected: "steel-frame-works"},
		{name: "punctuation", input: "Roads, Tunnels!", expected: "roads-tunnels"},
		{name: "accents", input: "Café Bâtiment", expected: "cafe-batiment"},
		{name: "leading and trailing", input: "  -Water- ", expected: "water"},
		{name: "repeated hyphens", input: "a---b", expected: "a-b"},
		{name: "numbers", input: "Phase 2", expected: "phase-2"},
		{name: "arabic", input: "جسور وطرق", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
