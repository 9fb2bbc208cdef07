package testutil

import (
	"github.com/contentmesh/contentmesh/core"
)

// DossierBuilder provides a fluent helper for constructing dossiers in tests.
// Example:
//
//	d := NewDossierBuilder("Pump Efficiency").
//		Document("hydraulics", "manual", "Centrifugal pumps reach 85% efficiency...").
//		Build()
//
// Chain only the parts you need; totals and discipline lists are derived.
type DossierBuilder struct {
	topic string
	docs  map[string][]core.SanitizedDocument
	audit core.AuditSummary
}

// NewDossierBuilder creates a builder for a dossier on the given topic.
func NewDossierBuilder(topic string) *DossierBuilder {
	return &DossierBuilder{
		topic: topic,
		docs:  map[string][]core.SanitizedDocument{},
	}
}

// Document appends a sanitized document under the given discipline (chainable).
func (b *DossierBuilder) Document(discipline, docType, content string) *DossierBuilder {
	b.docs[discipline] = append(b.docs[discipline], core.SanitizedDocument{
		TechnicalContent: content,
		Discipline:       discipline,
		DocType:          docType,
		Metadata: core.DocumentMetadata{
			Sanitized:       true,
			OriginalLength:  len(content),
			SanitizedLength: len(content),
		},
	})
	return b
}

// AuditSummary overrides the derived audit summary (chainable).
func (b *DossierBuilder) AuditSummary(s core.AuditSummary) *DossierBuilder {
	b.audit = s
	return b
}

// Build materializes the dossier with derived totals.
func (b *DossierBuilder) Build() *core.Dossier {
	total := 0
	var disciplines []string
	for disc, docs := range b.docs {
		disciplines = append(disciplines, disc)
		total += len(docs)
	}
	return &core.Dossier{
		Topic:              b.topic,
		TotalDocuments:     total,
		DisciplinesCovered: disciplines,
		KnowledgeBase:      b.docs,
		AuditSummary:       b.audit,
	}
}
