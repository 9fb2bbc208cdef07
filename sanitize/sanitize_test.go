package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const technicalText = "Centrifugal pumps achieve efficiencies above 85% when operated near " +
	"their best efficiency point. Variable frequency drives reduce energy " +
	"consumption significantly under partial load."

func TestSanitizer_SanitizeTextRemovesSensitiveLines(t *testing.T) {
	s := NewSanitizer()
	input := technicalText + "\nContact: john.doe@example.com\nBudget: 50,000 EUR for phase one"

	out := s.SanitizeText(input)

	assert.Contains(t, out, "Centrifugal pumps")
	assert.NotContains(t, out, "john.doe@example.com")
	assert.NotContains(t, out, "EUR")
	assert.NotContains(t, out, "[REDACTED]")

	entries := s.AuditLog().Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "line_removed", e.Action)
		assert.Equal(t, "sensitive_content", e.Reason)
		assert.LessOrEqual(t, len(e.Preview), 53) // 50 chars plus ellipsis
	}
}

func TestSanitizer_DetectViolations(t *testing.T) {
	s := NewSanitizer()
	text := "Client Acme signed Contract #4711 for $ 120,000. Details are confidential."

	violations := s.DetectViolations(text)
	require.NotEmpty(t, violations)

	var patterns, keywords int
	for _, v := range violations {
		switch {
		case strings.HasPrefix(v, "Pattern:"):
			patterns++
		case strings.HasPrefix(v, "Keyword:"):
			keywords++
		}
	}
	assert.GreaterOrEqual(t, patterns, 3) // client name, contract number, financial figure
	assert.GreaterOrEqual(t, keywords, 2) // client, contract, confidential
}

func TestSanitizer_SanitizeDocumentKeepsTechnicalContent(t *testing.T) {
	s := NewSanitizer()

	doc := s.SanitizeDocument(
		"Pump Efficiency Basics",
		technicalText+"\nContact: john.doe@example.com",
		map[string]any{"discipline": "hydraulics", "doc_type": "manual"},
	)
	require.NotNil(t, doc)

	assert.Contains(t, doc.TechnicalContent, "Centrifugal pumps")
	assert.NotContains(t, doc.TechnicalContent, "john.doe@example.com")
	assert.Equal(t, "hydraulics", doc.Discipline)
	assert.Equal(t, "manual", doc.DocType)
	assert.True(t, doc.Metadata.Sanitized)
	assert.GreaterOrEqual(t, doc.Metadata.ViolationsDetected, 1)

	summary := s.AuditLog().Summary()
	assert.Equal(t, 1, summary.DocumentsFlagged)
	assert.Equal(t, 1, summary.LinesRemoved)
	assert.Equal(t, 0, summary.DocumentsRejected)
}

func TestSanitizer_SanitizeDocumentRejectsShortRemainder(t *testing.T) {
	s := NewSanitizer()

	doc := s.SanitizeDocument(
		"Pricing sheet",
		"Total price: $ 99,000 for client Acme",
		nil,
	)
	assert.Nil(t, doc)

	summary := s.AuditLog().Summary()
	assert.Equal(t, 1, summary.DocumentsRejected)
}

func TestSanitizer_DefaultsForMissingStructData(t *testing.T) {
	s := NewSanitizer()

	doc := s.SanitizeDocument("Pump curves", technicalText, nil)
	require.NotNil(t, doc)
	assert.Equal(t, "general", doc.Discipline)
	assert.Equal(t, "unknown", doc.DocType)
}

func TestSanitizer_Reset(t *testing.T) {
	s := NewSanitizer()
	s.SanitizeText("the budget is secret")
	require.NotEmpty(t, s.AuditLog().Entries())

	s.Reset()
	assert.Empty(t, s.AuditLog().Entries())
}

func TestRedactText(t *testing.T) {
	t.Run("strict redacts emails phones and ids", func(t *testing.T) {
		in := "Reach maria@plant.example or 555-123-4567, badge AB12CD34EF56."
		out := RedactText(in, ModeStrict)
		assert.Contains(t, out, "[REDACTED_EMAIL]")
		assert.Contains(t, out, "[REDACTED_PHONE]")
		assert.Contains(t, out, "[REDACTED_ID]")
		assert.NotContains(t, out, "maria@plant.example")
	})

	t.Run("basic keeps long identifiers", func(t *testing.T) {
		in := "Serial AB12CD34EF56 stays, maria@plant.example goes."
		out := RedactText(in, ModeBasic)
		assert.Contains(t, out, "AB12CD34EF56")
		assert.Contains(t, out, "[REDACTED_EMAIL]")
	})

	t.Run("idempotent", func(t *testing.T) {
		once := RedactText("mail maria@plant.example now", ModeStrict)
		twice := RedactText(once, ModeStrict)
		assert.Equal(t, once, twice)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", RedactText("", ModeStrict))
	})
}
