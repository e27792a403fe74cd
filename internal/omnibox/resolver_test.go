package omnibox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver("https://duckduckgo.com/?q=%s")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"scheme passes through", "https://example.com/path", "https://example.com/path"},
		{"non-http scheme passes through", "about:blank", "about:blank"},
		{"bare domain gains https", "example.com", "https://example.com"},
		{"domain with path", "go.dev/doc/effective_go", "https://go.dev/doc/effective_go"},
		{"domain with port", "example.com:8080", "https://example.com:8080"},
		{"localhost", "localhost:3000", "https://localhost:3000"},
		{"ip address", "192.168.1.1", "https://192.168.1.1"},
		{"single word searches", "potatoes", "https://duckduckgo.com/?q=potatoes"},
		{"multi word searches", "go sqlite driver", "https://duckduckgo.com/?q=go+sqlite+driver"},
		{"unknown tld searches", "file.backup", "https://duckduckgo.com/?q=file.backup"},
		{"whitespace trimmed", "  example.com  ", "https://example.com"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.input))
		})
	}
}

func TestResolveWithoutSearchEngine(t *testing.T) {
	r := NewResolver("")
	assert.Equal(t, "plain query", r.Resolve("plain query"))
}
