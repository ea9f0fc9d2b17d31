package normalize

import (
	"regexp"
	"strings"
)

// RedactionMarker replaces token-shaped secrets in cleaned text.
const RedactionMarker = "[redacted]"

var (
	// imagePattern matches embedded image references: markdown images,
	// HTML img tags, and "[image: ...]" placeholders pasted from email clients.
	imagePattern = regexp.MustCompile(`(?i)!\[[^\]]*\]\([^)]*\)|<img[^>]*>|\[image:?[^\]]*\]`)

	urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

	// signaturePattern drops everything from a signature marker to the end:
	// a "--" line or a "Regards,"-style sign-off starting a line.
	signaturePattern = regexp.MustCompile(`(?is)(?:^|\n)[ \t]*(?:--[ \t]*(?:\n|$)|(?:best[ \t]+|kind[ \t]+)?regards[ \t]*,).*$`)

	// secretPattern matches token-shaped strings: long unbroken runs of
	// alphanumerics the way API keys, session cookies and hashes look.
	secretPattern = regexp.MustCompile(`[A-Za-z0-9]{20,}`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize cleans raw remote text for downstream keyword extraction,
// summarization and display. It strips embedded-image references, bare URLs
// and signature blocks, redacts token-shaped secrets, and collapses all
// whitespace runs to single spaces. Pure and total: it never fails, and
// unusable input degrades to an empty string.
func Normalize(raw string) string {
	s := imagePattern.ReplaceAllString(raw, " ")
	s = signaturePattern.ReplaceAllString(s, " ")
	s = urlPattern.ReplaceAllString(s, " ")
	s = secretPattern.ReplaceAllString(s, RedactionMarker)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Clip shortens s to at most max runes, appending an ellipsis when cut.
// Used for user-facing snippets.
func Clip(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
