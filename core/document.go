package core

import (
	"sort"
	"strconv"
	"strings"
)

// DocumentMetadata records what sanitization did to a document.
type DocumentMetadata struct {
	Sanitized          bool `json:"sanitized"`
	ViolationsDetected int  `json:"violations_detected"`
	OriginalLength     int  `json:"original_length"`
	SanitizedLength    int  `json:"sanitized_length"`
}

// SanitizedDocument is a raw search result after redaction. Documents whose
// remaining content fell below the minimum length are dropped by the
// retrieval stage and never appear in a Dossier.
type SanitizedDocument struct {
	TechnicalContent string           `json:"technical_content"`
	Discipline       string           `json:"discipline"`
	DocType          string           `json:"doc_type"`
	Metadata         DocumentMetadata `json:"metadata"`
}

// AuditSummary aggregates the sanitization audit log for one dossier.
type AuditSummary struct {
	TotalEvents       int `json:"total_audit_events"`
	DocumentsFlagged  int `json:"documents_flagged"`
	DocumentsRejected int `json:"documents_rejected"`
	LinesRemoved      int `json:"lines_removed"`
}

// Dossier is the sanitized, discipline-grouped document set for one topic.
// Once built it is the single source of truth for every downstream stage:
// synthesis writes only from it and the auditor verifies only against it.
// Treat as immutable after construction.
type Dossier struct {
	Topic              string                         `json:"topic"`
	TotalDocuments     int                            `json:"total_documents"`
	DisciplinesCovered []string                       `json:"disciplines_covered"`
	KnowledgeBase      map[string][]SanitizedDocument `json:"knowledge_base"`
	AuditSummary       AuditSummary                   `json:"audit_summary"`
}

// AllDocuments returns the dossier's documents in stable discipline order.
func (d *Dossier) AllDocuments() []SanitizedDocument {
	disciplines := make([]string, 0, len(d.KnowledgeBase))
	for disc := range d.KnowledgeBase {
		disciplines = append(disciplines, disc)
	}
	sort.Strings(disciplines)

	var docs []SanitizedDocument
	for _, disc := range disciplines {
		docs = append(docs, d.KnowledgeBase[disc]...)
	}
	return docs
}

// TechnicalContext concatenates the technical content of every document,
// grouped by discipline. This is the evidence blob handed to synthesis
// prompts and to each verification call.
func (d *Dossier) TechnicalContext() string {
	var b strings.Builder

	disciplines := make([]string, 0, len(d.KnowledgeBase))
	for disc := range d.KnowledgeBase {
		disciplines = append(disciplines, disc)
	}
	sort.Strings(disciplines)

	for _, disc := range disciplines {
		b.WriteString("### DISCIPLINE: ")
		b.WriteString(strings.ToUpper(disc))
		b.WriteString("\n")
		for i, doc := range d.KnowledgeBase[disc] {
			b.WriteString("\nDOCUMENT ")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(" (")
			b.WriteString(doc.DocType)
			b.WriteString("):\n")
			b.WriteString(doc.TechnicalContent)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
