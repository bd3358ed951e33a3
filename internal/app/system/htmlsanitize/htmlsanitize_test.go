package htmlsanitize_test

import (
	"testing"

	"underwraps/internal/app/system/htmlsanitize"
)

func TestPlain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"strips tags", "<b>wool socks</b>", "wool socks"},
		{"strips script", "hi<script>alert('x')</script>", "hi"},
		{"unescapes entities", "fish &amp; chips", "fish & chips"},
		{"trims", "  Potlatch  ", "Potlatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Plain(tt.input)
			if got != tt.want {
				t.Errorf("Plain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
