package results

import (
	"regexp"
	"strconv"
	"strings"
)

// TestPreview is one test extracted from the engine's dry-run output.
type TestPreview struct {
	Description    string   `json:"description"`
	Prompt         string   `json:"prompt,omitempty"`
	AssertionCount int      `json:"assertion_count"`
	Assertions     []string `json:"assertions,omitempty"`
}

// DryRunParser extracts test previews from the engine's dry-run output.
//
// The only current implementation scrapes the engine's human-readable text.
// Keep callers on this interface: once the engine can emit the preview as
// JSON, the text scraper becomes a legacy fallback swapped out here without
// touching upstream code.
type DryRunParser interface {
	ParseDryRun(output string) []TestPreview
	CountTests(output string) int
}

// TextDryRunParser is the best-effort scraper over the engine's
// human-readable dry-run text. It is inherently fragile: the engine does not
// promise this format, so every extraction here degrades gracefully instead
// of failing.
type TextDryRunParser struct{}

var _ DryRunParser = TextDryRunParser{}

var (
	// Test #3: "handles empty input"
	reTestHeader = regexp.MustCompile(`(?m)^Test #(\d+): "(.*)"\s*$`)

	// Assertions: 2
	reAssertionCount = regexp.MustCompile(`(?m)^\s*Assertions:\s*(\d+)\s*$`)

	//   1. contains "expected text"
	reAssertionLine = regexp.MustCompile(`^\s*\d+\.\s+(.*\S)\s*$`)
)

// promptMarkers are the prefixes the engine uses for structured prompt lines.
var promptMarkers = []string{"| ", "Prompt: "}

// ParseDryRun segments the output on test headers and extracts a preview per
// segment. Unparseable segments yield a preview with just the description.
func (TextDryRunParser) ParseDryRun(output string) []TestPreview {
	headers := reTestHeader.FindAllStringSubmatchIndex(output, -1)
	if len(headers) == 0 {
		return nil
	}

	previews := make([]TestPreview, 0, len(headers))
	for i, loc := range headers {
		desc := output[loc[4]:loc[5]]
		segStart := loc[1]
		segEnd := len(output)
		if i+1 < len(headers) {
			segEnd = headers[i+1][0]
		}
		segment := output[segStart:segEnd]

		preview := TestPreview{Description: desc}
		preview.Prompt = extractPrompt(segment)
		preview.AssertionCount, preview.Assertions = extractAssertions(segment)
		previews = append(previews, preview)
	}
	return previews
}

// CountTests returns the number of test headers in the dry-run output, used
// as the actual test count for estimates. Returns 0 when none were found.
func (p TextDryRunParser) CountTests(output string) int {
	return len(reTestHeader.FindAllString(output, -1))
}

// extractPrompt collects structured prompt lines when present, falling back
// to the free-form lines between the header and the assertion block.
func extractPrompt(segment string) string {
	lines := strings.Split(segment, "\n")

	var marked []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, marker := range promptMarkers {
			if strings.HasPrefix(trimmed, marker) {
				marked = append(marked, strings.TrimPrefix(trimmed, marker))
				break
			}
		}
	}
	if len(marked) > 0 {
		return strings.Join(marked, "\n")
	}

	// Generic fallback: everything up to the assertion count line.
	var generic []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if reAssertionCount.MatchString(line) || reAssertionLine.MatchString(line) {
			break
		}
		generic = append(generic, trimmed)
	}
	return strings.Join(generic, "\n")
}

// extractAssertions reads the declared assertion count and up to that many
// enumerated assertion lines following it.
func extractAssertions(segment string) (int, []string) {
	m := reAssertionCount.FindStringSubmatchIndex(segment)
	if m == nil {
		return 0, nil
	}
	count, err := strconv.Atoi(segment[m[2]:m[3]])
	if err != nil || count <= 0 {
		return 0, nil
	}

	var assertions []string
	for _, line := range strings.Split(segment[m[1]:], "\n") {
		if len(assertions) >= count {
			break
		}
		if am := reAssertionLine.FindStringSubmatch(line); am != nil {
			assertions = append(assertions, am[1])
		}
	}
	return count, assertions
}
