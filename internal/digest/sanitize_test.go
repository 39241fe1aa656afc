package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain text",
		"{{ states('sensor.x') }}",
		"}{ mixed [brackets] {",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "idempotent for %q", in)
		assert.False(t, strings.ContainsAny(once, "{}"), "no braces in %q", once)
	}
	assert.Equal(t, "[[ x ]]", Sanitize("{{ x }}"))
}

func TestFinalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Text: Hello\n", finalize("Text: Hello\n\n"))
	assert.Equal(t, "a\n", finalize("a \t\n "))
	assert.Equal(t, "\n", finalize(""))
}
