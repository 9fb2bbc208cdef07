package dossier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentmesh/contentmesh/sanitize"
	"github.com/contentmesh/contentmesh/search"
)

const technicalSnippet = "Centrifugal pumps achieve efficiencies above 85% when operated near " +
	"their best efficiency point. Impeller trimming adjusts the duty point."

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, string, int) ([]search.Result, error) {
	return nil, errors.New("backend unavailable")
}

func TestBuilder_Build(t *testing.T) {
	searcher := search.NewStaticSearcher(
		search.Result{
			Title:      "Pump hydraulics manual",
			Snippet:    technicalSnippet,
			StructData: map[string]any{"discipline": "hydraulics", "doc_type": "manual"},
		},
		search.Result{
			Title:      "Drive sizing datasheet",
			Snippet:    "Variable frequency drives reduce partial-load energy consumption by up to 30% in pumping stations.",
			StructData: map[string]any{"discipline": "electrical", "doc_type": "datasheet"},
		},
		search.Result{
			Title:      "Commercial terms",
			Snippet:    "Price: $ 90,000 per unit for client Acme.",
			StructData: map[string]any{"discipline": "sales"},
		},
	)

	builder := NewBuilder(searcher, sanitize.NewSanitizer())
	d, err := builder.Build(context.Background(), "Pump Efficiency")
	require.NoError(t, err)

	assert.Equal(t, "Pump Efficiency", d.Topic)
	assert.Equal(t, 2, d.TotalDocuments)
	assert.ElementsMatch(t, []string{"hydraulics", "electrical"}, d.DisciplinesCovered)
	assert.Len(t, d.KnowledgeBase["hydraulics"], 1)
	assert.Len(t, d.KnowledgeBase["electrical"], 1)

	// The commercial document was rejected and the rejection audit-logged.
	assert.Equal(t, 1, d.AuditSummary.DocumentsRejected)

	ctxBlob := d.TechnicalContext()
	assert.Contains(t, ctxBlob, "DISCIPLINE: HYDRAULICS")
	assert.Contains(t, ctxBlob, "Centrifugal pumps")
	assert.NotContains(t, ctxBlob, "Acme")
}

func TestBuilder_SearchFailureYieldsEmptyDossier(t *testing.T) {
	builder := NewBuilder(failingSearcher{}, sanitize.NewSanitizer())

	d, err := builder.Build(context.Background(), "Pump Efficiency")
	require.NoError(t, err)
	assert.Equal(t, 0, d.TotalDocuments)
	assert.Empty(t, d.KnowledgeBase)
}

func TestBuilder_FreshAuditLogPerBuild(t *testing.T) {
	searcher := search.NewStaticSearcher(search.Result{
		Title:   "Terms",
		Snippet: "Budget: confidential client pricing.",
	})
	sanitizer := sanitize.NewSanitizer()
	builder := NewBuilder(searcher, sanitizer)

	d1, err := builder.Build(context.Background(), "t")
	require.NoError(t, err)
	d2, err := builder.Build(context.Background(), "t")
	require.NoError(t, err)

	// The second build starts from a clean log instead of accumulating.
	assert.Equal(t, d1.AuditSummary.TotalEvents, d2.AuditSummary.TotalEvents)
}
