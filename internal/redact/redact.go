// Package redact strips credential-shaped substrings from text before it
// reaches logs, error messages, or API responses.
package redact

import "regexp"

// Placeholder replaces any matched secret.
const Placeholder = "[REDACTED:API_KEY]"

var (
	reAPIKey      = regexp.MustCompile(`\bsk-[A-Za-z0-9]{32,}\b`)
	reGoogleKey   = regexp.MustCompile(`\bAIza[A-Za-z0-9_\-]{30,}\b`)
	reGitHubToken = regexp.MustCompile(`\bghp_[A-Za-z0-9]{10,}\b`)
)

// Text replaces every API-key-shaped substring in s with Placeholder.
func Text(s string) string {
	out := reAPIKey.ReplaceAllString(s, Placeholder)
	out = reGoogleKey.ReplaceAllString(out, Placeholder)
	out = reGitHubToken.ReplaceAllString(out, Placeholder)
	return out
}

// Error returns the redacted message of err, or "" when err is nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return Text(err.Error())
}
