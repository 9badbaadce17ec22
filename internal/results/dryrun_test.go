package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDryRun = `Planning run: smoke (cache enabled)

Test #1: "greets the user by name"
  Prompt:
  | Hello, my name is {{name}}.
  | Please greet me.
  Assertions: 2
    1. contains "Hello"
    2. llm-rubric greeting is polite

Test #2: "rejects malformed dates"
  Send the string "2026-13-45" and expect a validation error.
  Assertions: 1
    1. contains "invalid date"

Test #3: "no assertions declared"
  Some free-form preview text here.
`

func TestTextDryRunParser_Segments(t *testing.T) {
	previews := TextDryRunParser{}.ParseDryRun(sampleDryRun)
	require.Len(t, previews, 3)

	assert.Equal(t, "greets the user by name", previews[0].Description)
	assert.Equal(t, "rejects malformed dates", previews[1].Description)
	assert.Equal(t, "no assertions declared", previews[2].Description)
}

func TestTextDryRunParser_StructuredPrompt(t *testing.T) {
	previews := TextDryRunParser{}.ParseDryRun(sampleDryRun)
	require.Len(t, previews, 3)

	assert.Equal(t, "Hello, my name is {{name}}.\nPlease greet me.", previews[0].Prompt)
}

func TestTextDryRunParser_GenericPromptFallback(t *testing.T) {
	previews := TextDryRunParser{}.ParseDryRun(sampleDryRun)
	require.Len(t, previews, 3)

	// No marker lines in segment 2, so the free-form lines before the
	// assertion block are used.
	assert.Equal(t, `Send the string "2026-13-45" and expect a validation error.`, previews[1].Prompt)
}

func TestTextDryRunParser_Assertions(t *testing.T) {
	previews := TextDryRunParser{}.ParseDryRun(sampleDryRun)
	require.Len(t, previews, 3)

	assert.Equal(t, 2, previews[0].AssertionCount)
	assert.Equal(t, []string{`contains "Hello"`, "llm-rubric greeting is polite"}, previews[0].Assertions)

	assert.Equal(t, 1, previews[1].AssertionCount)
	assert.Equal(t, []string{`contains "invalid date"`}, previews[1].Assertions)

	assert.Zero(t, previews[2].AssertionCount)
	assert.Empty(t, previews[2].Assertions)
}

func TestTextDryRunParser_CountTests(t *testing.T) {
	p := TextDryRunParser{}
	assert.Equal(t, 3, p.CountTests(sampleDryRun))
	assert.Zero(t, p.CountTests("no headers in this text"))
}

func TestTextDryRunParser_EmptyOutput(t *testing.T) {
	assert.Nil(t, TextDryRunParser{}.ParseDryRun(""))
}
