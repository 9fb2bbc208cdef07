// Package dossier implements the context-retrieval stage: querying the
// knowledge base for a topic, sanitizing every document through the privacy
// boundary, and assembling the immutable evidence dossier later stages write
// and audit against.
package dossier

import (
	"context"
	"fmt"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/sanitize"
	"github.com/contentmesh/contentmesh/search"
)

// DefaultMaxDocuments bounds how many documents one dossier build retrieves.
const DefaultMaxDocuments = 15

// Options configure a Builder.
type Options struct {
	MaxDocuments int
	Logger       logging.Logger
}

// Builder assembles sanitized knowledge dossiers.
type Builder struct {
	searcher  search.Searcher
	sanitizer *sanitize.Sanitizer
	opts      Options
}

// NewBuilder creates a Builder over the given retrieval backend and
// sanitizer.
func NewBuilder(searcher search.Searcher, sanitizer *sanitize.Sanitizer, optFns ...func(o *Options)) *Builder {
	opts := Options{
		MaxDocuments: DefaultMaxDocuments,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{searcher: searcher, sanitizer: sanitizer, opts: opts}
}

// Build retrieves, sanitizes and organizes the evidence for a topic. Every
// document passes through the sanitizer; documents that lose too much
// content are dropped and audit-logged. A retrieval failure yields an empty
// dossier rather than an error so the pipeline can surface the gap at audit
// time.
func (b *Builder) Build(ctx context.Context, topic string) (*core.Dossier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.sanitizer.Reset()
	b.opts.Logger.Info("Building knowledge dossier", "topic", topic)

	results, err := b.searcher.Search(ctx, technicalQuery(topic), b.opts.MaxDocuments)
	if err != nil {
		b.opts.Logger.Error("Knowledge base query failed", "error", err.Error())
		results = nil
	}
	b.opts.Logger.Info("Documents retrieved", "count", len(results))

	byDiscipline := make(map[string][]core.SanitizedDocument)
	total := 0
	for _, r := range results {
		doc := b.sanitizer.SanitizeDocument(r.Title, r.Snippet, r.StructData)
		if doc == nil {
			continue
		}
		byDiscipline[doc.Discipline] = append(byDiscipline[doc.Discipline], *doc)
		total++
	}

	disciplines := make([]string, 0, len(byDiscipline))
	for d := range byDiscipline {
		disciplines = append(disciplines, d)
	}

	d := &core.Dossier{
		Topic:              topic,
		TotalDocuments:     total,
		DisciplinesCovered: disciplines,
		KnowledgeBase:      byDiscipline,
		AuditSummary:       b.sanitizer.AuditLog().Summary(),
	}

	b.opts.Logger.Info("Dossier assembled",
		"documents", total,
		"disciplines", len(disciplines),
		"audit_events", d.AuditSummary.TotalEvents)

	return d, nil
}

// technicalQuery steers retrieval toward technical material and away from
// commercial document sections.
func technicalQuery(topic string) string {
	return fmt.Sprintf(`%s

Focus: technical principles, formulas, engineering solutions, methodologies,
technologies, technical specifications.`, topic)
}
