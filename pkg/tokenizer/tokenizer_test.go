package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 1, CountTokens(""))
	assert.Equal(t, 4, CountTokens("one two three"))
}

func TestTruncate(t *testing.T) {
	text := strings.Repeat("word ", 300)

	out := Truncate(text, 100)
	assert.LessOrEqual(t, CountTokens(out), 100)
	assert.Equal(t, 75, len(strings.Fields(out)))

	assert.Equal(t, "short text", Truncate("short text", 100))
}
