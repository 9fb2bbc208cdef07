package sanitize

import "regexp"

// Mode selects how aggressive placeholder redaction is.
type Mode string

const (
	// ModeStrict redacts emails, phones and long identifiers.
	ModeStrict Mode = "strict"
	// ModeBasic redacts emails and phones only.
	ModeBasic Mode = "basic"
)

var (
	emailRe = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phoneRe = regexp.MustCompile(`(\+?\d{1,2}\s*)?(\(?\d{3}\)?[\s.-]?)?\d{3}[\s.-]?\d{4}`)
	idRe    = regexp.MustCompile(`(?i)\b([A-Z0-9]{12,}|[0-9]{9,})\b`)
)

// RedactText replaces personally identifying tokens with typed placeholders.
// Every model response passes through this before anything downstream sees
// it; callers must not skip it on any code path.
func RedactText(text string, mode Mode) string {
	if text == "" {
		return text
	}

	out := emailRe.ReplaceAllString(text, "[REDACTED_EMAIL]")
	out = phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")

	if mode == ModeStrict {
		out = idRe.ReplaceAllString(out, "[REDACTED_ID]")
	}

	return out
}
