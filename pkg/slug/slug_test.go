package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/identity/pkg/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		opts     []slug.Option
		expected string
	}{
		{name: "simple text", input: "Hello World", expected: "hello-world"},
		{name: "with punctuation", input: "Hello, World!", expected: "hello-world"},
		{name: "numbers", input: "Agent 007", expected: "agent-007"},
		{name: "collapses separators", input: "Too    Many -- Spaces", expected: "too-many-spaces"},
		{name: "trims edges", input: "  --Alice--  ", expected: "alice"},
		{name: "diacritics", input: "José Álvarez Ñúñez", expected: "jose-alvarez-nunez"},
		{name: "letters without marks", input: "Łukasz Straße Ørsted", expected: "lukasz-strasse-orsted"},
		{name: "non latin falls back", input: "山田 太郎", expected: "user"},
		{name: "mixed scripts keep latin", input: "Taro 山田", expected: "taro"},
		{name: "empty", input: "", expected: "user"},
		{name: "custom fallback", input: "!!!", opts: []slug.Option{slug.Fallback("anon")}, expected: "anon"},
		{name: "custom separator", input: "Hello World", opts: []slug.Option{slug.Separator("_")}, expected: "hello_world"},
		{name: "max length cuts whole pieces", input: "Hello World", opts: []slug.Option{slug.MaxLength(7)}, expected: "hello-w"},
		{name: "strip drops punctuation", input: "Dr. O'Brien", opts: []slug.Option{slug.StripPunctuation()}, expected: "dr-obrien"},
		{name: "strip keeps whitespace runs as one separator", input: "  Mary-Jane \t Watson! ", opts: []slug.Option{slug.StripPunctuation()}, expected: "maryjane-watson"},
		{name: "strip falls back", input: "!!! ???", opts: []slug.Option{slug.StripPunctuation()}, expected: "user"},
		{name: "max length never ends in separator", input: "Hello World", opts: []slug.Option{slug.MaxLength(6)}, expected: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, slug.Make(tt.input, tt.opts...))
		})
	}
}

func TestMake_UsernameSafe(t *testing.T) {
	t.Parallel()

	usernamePattern := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	for _, in := range []string{"Zoë O'Brien", "Ærøskøbing <3", "​", "áb̧c", "🙂 smile"} {
		assert.Regexp(t, usernamePattern, slug.Make(in), in)
	}
}
