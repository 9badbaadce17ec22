package redact

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_APIKey(t *testing.T) {
	key := "sk-" + strings.Repeat("a1B2", 8) // 32 alphanumeric chars

	out := Text("request failed with key " + key + " rejected")
	assert.NotContains(t, out, key)
	assert.Contains(t, out, Placeholder)
}

func TestText_ShortKeysLeftAlone(t *testing.T) {
	// Under the 32-character threshold, not key-shaped enough to strip.
	in := "sk-tooshort was mentioned"
	assert.Equal(t, in, Text(in))
}

func TestText_MultipleOccurrences(t *testing.T) {
	key := "sk-" + strings.Repeat("x", 40)
	out := Text(key + " and again " + key)
	assert.Equal(t, 2, strings.Count(out, Placeholder))
	assert.NotContains(t, out, key)
}

func TestText_OtherProviders(t *testing.T) {
	google := "AIza" + strings.Repeat("Z", 35)
	github := "ghp_" + strings.Repeat("k", 20)

	out := Text("keys: " + google + " " + github)
	assert.NotContains(t, out, google)
	assert.NotContains(t, out, github)
}

func TestError(t *testing.T) {
	assert.Empty(t, Error(nil))

	key := "sk-" + strings.Repeat("b", 32)
	err := errors.New("engine rejected credential " + key)
	out := Error(err)
	assert.NotContains(t, out, key)
	assert.Contains(t, out, Placeholder)
}
