package structured

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractJSON returns the first balanced JSON object embedded in text.
// Models frequently wrap JSON in markdown fences or lead with prose; this
// walks from the first opening brace tracking string and escape state until
// the matching close, then verifies the span actually parses.
func ExtractJSON(text string) (string, bool) {
	text = stripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if gjson.Valid(candidate) {
					return candidate, true
				}
				return "", false
			}
		}
	}
	return "", false
}

// stripFences removes a leading ```json (or bare ```) fence and its closing
// fence so the brace scan sees the payload directly.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}
