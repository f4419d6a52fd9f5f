package notify

import "regexp"

var secretPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`xox[abps]-[0-9A-Za-z-]{4,}`), "[masked-slack-token]"},
	{regexp.MustCompile(`(://[^/\s:@]+:)[^@/\s]+@`), "${1}[masked]@"},
	{regexp.MustCompile(`(?i)\bbearer\s+[0-9A-Za-z._~+/=-]{8,}`), "Bearer [masked]"},
	{regexp.MustCompile(`(?i)\b(token|passwd|password|secret|api[_-]?key)(["']?\s*[:=]\s*["']?)[^\s"'&]+`), "${1}${2}[masked]"},
}

// MaskSecrets scrubs credential-shaped substrings from outbound text so
// an error message quoting a URL or header cannot leak tokens into a
// chat channel.
func MaskSecrets(text string) string {
	for _, p := range secretPatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}
