package translator

import (
	"fmt"
	"strings"
	"unicode"
)

// ============================================================================
// RESPONSE PARSER: Extracts the statement from a model answer
// ============================================================================
// Models often wrap code in markdown fences even when told not to.
// Accepted shapes, after trimming:
//   ```lang\n<stmt>\n```   with lang empty or one of knownFenceTags
//   `<stmt>`
//   <stmt>
// Any other fence tag, or a fence left after stripping, is malformed.
// ============================================================================

// knownFenceTags are the language tags accepted on an opening fence.
var knownFenceTags = map[string]bool{
	"python": true,
	"expr":   true,
	"text":   true,
	"go":     true,
	"js":     true,
}

// ExtractStatement strips fences and whitespace from a model answer.
func ExtractStatement(response string) (string, error) {
	s := strings.TrimSpace(response)

	if rest, ok := strings.CutPrefix(s, "```"); ok {
		tag := rest
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			tag = rest[:i]
		}
		if tag != "" && !knownFenceTags[strings.ToLower(tag)] {
			return "", fmt.Errorf("%w: unsupported fence %q", ErrMalformedOutput, truncate("```"+tag, 40))
		}
		s = rest[len(tag):]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))

	if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if s == "" {
		return "", fmt.Errorf("%w: empty statement", ErrMalformedOutput)
	}
	if strings.Contains(s, "```") {
		return "", fmt.Errorf("%w: unexpected fence in %q", ErrMalformedOutput, truncate(s, 80))
	}
	return s, nil
}
