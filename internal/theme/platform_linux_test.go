//go:build linux

package theme

import "testing"

func TestParseColorScheme(t *testing.T) {
	tests := []struct {
		in       string
		dark, ok bool
	}{
		{"'prefer-dark'\n", true, true},
		{"'prefer-light'\n", false, true},
		{"'default'", false, true},
		{"", false, false},
	}
	for _, tt := range tests {
		dark, ok := parseColorScheme(tt.in)
		if dark != tt.dark || ok != tt.ok {
			t.Errorf("parseColorScheme(%q) = %v, %v; want %v, %v", tt.in, dark, ok, tt.dark, tt.ok)
		}
	}
}
