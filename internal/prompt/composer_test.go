package prompt

import (
	"strings"
	"testing"

	"github.com/cloo-solutions/coach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SubstitutesAllPlaceholders(t *testing.T) {
	out := Render("FORMAT", `{"input":"general","summary":"","response":""}`, "I ran 5k today")

	assert.Contains(t, out, "The user just responded: 'I ran 5k today'.")
	assert.Contains(t, out, "'response'.\nFORMAT\n\n")
	assert.Contains(t, out, `OLD KNOWLEDGE BASE: {"input":"general","summary":"","response":""}`)
	assert.Contains(t, out, "NEW MESSAGE: I ran 5k today")
	assert.True(t, strings.HasSuffix(out, "NEW KNOWLEDGE BASE:"))

	assert.NotContains(t, out, PlaceholderInput)
	assert.NotContains(t, out, PlaceholderFormatInstructions)
	assert.NotContains(t, out, PlaceholderKnowledgeBase)
}

func TestRender_DoesNotExpandPlaceholdersInValues(t *testing.T) {
	out := Render("fmt", "kb", "what is {know_base}?")

	assert.Contains(t, out, "NEW MESSAGE: what is {know_base}?")
	assert.Contains(t, out, "OLD KNOWLEDGE BASE: kb")
}

func TestRender_Deterministic(t *testing.T) {
	a := Render("f", "k", "i")
	b := Render("f", "k", "i")

	assert.Equal(t, a, b)
}

func TestFormatInstructions_DescribesKnowledgeBase(t *testing.T) {
	instructions, err := FormatInstructions(domain.KnowledgeBase{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(instructions, "The output should be formatted as a JSON instance"))
	assert.Contains(t, instructions, `"input"`)
	assert.Contains(t, instructions, `"summary"`)
	assert.Contains(t, instructions, `"response"`)
	assert.Contains(t, instructions, "Summary of conversation so far")
	assert.Contains(t, instructions, "default: general")
	assert.Contains(t, instructions, `"type":"string"`)
}

func TestComposer_Compose(t *testing.T) {
	c, err := NewComposer()
	require.NoError(t, err)

	out := c.Compose(`{"input":"general","summary":"","response":""}`, "I ran 5k today")

	assert.Contains(t, out, c.FormatInstructions())
	assert.Contains(t, out, "NEW MESSAGE: I ran 5k today")
}
