package sanitize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/logging"
)

// MinContentLength is the minimum number of characters a document must retain
// after sanitization to stay in a dossier. Anything shorter carries no usable
// technical content once the private material is gone.
const MinContentLength = 50

// forbiddenPatterns must never appear in a dossier. Matches are replaced with
// [REDACTED] and the containing line is then dropped by the keyword filter.
var forbiddenPatterns = []*regexp.Regexp{
	// Client names in project context
	regexp.MustCompile(`(?i)\b(Client|Cliente|Customer|Company)\s+[A-Z][a-z]+`),
	// Street addresses of project sites
	regexp.MustCompile(`(?i)\b\d+\s+[A-Z][a-z]+\s+(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd)`),
	// GPS coordinates
	regexp.MustCompile(`(?i)\b\d+\.\d+°?\s*[NS],?\s*\d+\.\d+°?\s*[EW]`),
	// Financial figures
	regexp.MustCompile(`\$\s*\d+[\d,]*(\.\d{2})?`),
	regexp.MustCompile(`(?i)\b\d+[\d,]*\s*(USD|EUR|dollars?|euros?)\b`),
	// Contract / project numbers
	regexp.MustCompile(`(?i)\b(Contract|Project|PO)\s*#?\s*\d+`),
	// Emails and phones
	regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
}

// sensitiveKeywords mark lines as private regardless of pattern matches.
var sensitiveKeywords = []string{
	"client", "cliente", "customer", "contract", "contrato",
	"budget", "presupuesto", "cost", "costo", "price", "precio",
	"confidential", "confidencial", "proprietary", "private",
}

// AuditEntry records one sanitization action for later review.
type AuditEntry struct {
	Action        string   `json:"action"` // "line_removed", "document_flagged", "document_rejected"
	Reason        string   `json:"reason,omitempty"`
	Preview       string   `json:"preview,omitempty"`
	DocumentTitle string   `json:"document_title,omitempty"`
	Violations    []string `json:"violations,omitempty"`
}

// AuditLog accumulates sanitization events for one dossier build. Not safe
// for concurrent use; each run owns its own log.
type AuditLog struct {
	entries []AuditEntry
}

// Append records an entry.
func (l *AuditLog) Append(e AuditEntry) { l.entries = append(l.entries, e) }

// Entries returns all recorded entries in order.
func (l *AuditLog) Entries() []AuditEntry { return l.entries }

// Reset clears the log for a new run.
func (l *AuditLog) Reset() { l.entries = nil }

// Summary aggregates the log into dossier-level counters.
func (l *AuditLog) Summary() core.AuditSummary {
	s := core.AuditSummary{TotalEvents: len(l.entries)}
	for _, e := range l.entries {
		switch e.Action {
		case "document_flagged":
			s.DocumentsFlagged++
		case "document_rejected":
			s.DocumentsRejected++
		case "line_removed":
			s.LinesRemoved++
		}
	}
	return s
}

// Options configure a Sanitizer.
type Options struct {
	MinContentLength int
	Logger           logging.Logger
}

// Sanitizer strips private material from retrieved documents and records
// every removal in its audit log.
type Sanitizer struct {
	opts Options
	log  *AuditLog
}

// NewSanitizer creates a Sanitizer with a fresh audit log.
func NewSanitizer(optFns ...func(o *Options)) *Sanitizer {
	opts := Options{
		MinContentLength: MinContentLength,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Sanitizer{opts: opts, log: &AuditLog{}}
}

// AuditLog exposes the accumulated audit trail.
func (s *Sanitizer) AuditLog() *AuditLog { return s.log }

// Reset clears the audit log for a new dossier build.
func (s *Sanitizer) Reset() { s.log.Reset() }

// DetectViolations reports which forbidden patterns and sensitive keywords
// occur in text, without modifying it.
func (s *Sanitizer) DetectViolations(text string) []string {
	var violations []string

	for _, pattern := range forbiddenPatterns {
		if matches := pattern.FindAllString(text, -1); len(matches) > 0 {
			expr := pattern.String()
			if len(expr) > 30 {
				expr = expr[:30] + "..."
			}
			violations = append(violations, "Pattern: "+expr+" (matches: "+strconv.Itoa(len(matches))+")")
		}
	}

	lower := strings.ToLower(text)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			violations = append(violations, "Keyword: "+keyword)
		}
	}

	return violations
}

// SanitizeText removes forbidden patterns and drops every line that still
// carries a sensitive keyword or a redaction marker. Each dropped line is
// audit-logged with a bounded preview.
func (s *Sanitizer) SanitizeText(text string) string {
	sanitized := text
	for _, pattern := range forbiddenPatterns {
		sanitized = pattern.ReplaceAllString(sanitized, "[REDACTED]")
	}

	lines := strings.Split(sanitized, "\n")
	clean := make([]string, 0, len(lines))

	for _, line := range lines {
		lower := strings.ToLower(line)
		sensitive := strings.Contains(line, "[REDACTED]")
		if !sensitive {
			for _, kw := range sensitiveKeywords {
				if strings.Contains(lower, kw) {
					sensitive = true
					break
				}
			}
		}
		if !sensitive {
			clean = append(clean, line)
			continue
		}
		s.log.Append(AuditEntry{
			Action:  "line_removed",
			Reason:  "sensitive_content",
			Preview: preview(line, 50),
		})
	}

	return strings.Join(clean, "\n")
}

// SanitizeDocument extracts the technical core of one retrieved document.
// Returns nil when the sanitized remainder is too short to be useful; the
// rejection is audit-logged.
func (s *Sanitizer) SanitizeDocument(title, snippet string, structData map[string]any) *core.SanitizedDocument {
	fullText := title + "\n" + snippet

	violations := s.DetectViolations(fullText)
	if len(violations) > 0 {
		s.log.Append(AuditEntry{
			Action:        "document_flagged",
			DocumentTitle: preview(title, 50),
			Violations:    violations,
		})
	}

	sanitized := s.SanitizeText(fullText)

	if len(strings.TrimSpace(sanitized)) < s.opts.MinContentLength {
		s.log.Append(AuditEntry{
			Action:        "document_rejected",
			Reason:        "insufficient_technical_content",
			DocumentTitle: preview(title, 50),
		})
		return nil
	}

	discipline := stringField(structData, "discipline", "general")
	docType := stringField(structData, "doc_type", "unknown")

	return &core.SanitizedDocument{
		TechnicalContent: sanitized,
		Discipline:       discipline,
		DocType:          docType,
		Metadata: core.DocumentMetadata{
			Sanitized:          true,
			ViolationsDetected: len(violations),
			OriginalLength:     len(fullText),
			SanitizedLength:    len(sanitized),
		},
	}
}

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func preview(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
