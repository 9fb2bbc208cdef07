package synthesis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentmesh/contentmesh/internal/testutil"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/structured"
)

func newSynthesizer(outlineModel, sectionModel *model.MockModel) *Synthesizer {
	contract := structured.NewContract([]structured.Generator{outlineModel})
	return NewSynthesizer(contract, sectionModel)
}

func TestSynthesizer_Run(t *testing.T) {
	d := testutil.NewDossierBuilder("Pump Efficiency").
		Document("hydraulics", "manual", "Centrifugal pumps reach 85% efficiency near their best efficiency point.").
		Build()

	outlineModel := model.NewMockModel("outliner", "mock")
	outlineModel.EnqueueResponse(testutil.OutlineJSON("Pump Efficiency in Practice", "Introduction", "Design Factors"))

	sectionModel := model.NewMockModel("writer", "mock")
	sectionModel.EnqueueResponse("Pumps convert rotational energy into hydraulic energy.")
	sectionModel.EnqueueResponse("Impeller geometry dominates the efficiency curve.")

	s := newSynthesizer(outlineModel, sectionModel)
	article, err := s.Run(context.Background(), "Pump Efficiency", d)
	require.NoError(t, err)

	assert.Equal(t, "Pump Efficiency in Practice", article.Title)
	require.Len(t, article.Sections, 2)
	assert.Equal(t, "Introduction", article.Sections[0].Title)
	assert.Contains(t, article.FullText, "# Pump Efficiency in Practice")
	assert.Contains(t, article.FullText, "## Design Factors")
	assert.Contains(t, article.FullText, "Impeller geometry")
	assert.Equal(t, 2, article.Metadata.SectionCount)
	assert.Equal(t, article.WordCount(), article.Metadata.WordCount)
	assert.Equal(t, "Pump Efficiency", article.Metadata.Topic)

	// The second section call must see the first section as context.
	calls := sectionModel.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt(), "Pumps convert rotational energy")
}

func TestSynthesizer_DefaultOutlineOnFailure(t *testing.T) {
	d := testutil.NewDossierBuilder("Pump Efficiency").
		Document("hydraulics", "manual", "Pump curves describe head versus flow.").
		Build()

	outlineModel := model.NewMockModel("outliner", "mock")
	for i := 0; i <= structured.DefaultMaxRepairs; i++ {
		outlineModel.EnqueueResponse("not an outline")
	}
	sectionModel := model.NewMockModel("writer", "mock")
	sectionModel.EnqueueResponse("A clean introduction.")

	s := newSynthesizer(outlineModel, sectionModel)
	article, err := s.Run(context.Background(), "Pump Efficiency", d)
	require.NoError(t, err)

	require.Len(t, article.Sections, 1)
	assert.Equal(t, "Introduction", article.Sections[0].Title)
	assert.Equal(t, "Pump Efficiency", article.Title)
	assert.Equal(t, "Engineering professionals", article.Metadata.TargetAudience)
}

func TestSynthesizer_SectionErrorDegradesToPlaceholder(t *testing.T) {
	d := testutil.NewDossierBuilder("Pump Efficiency").
		Document("hydraulics", "manual", "Pump curves describe head versus flow.").
		Build()

	outlineModel := model.NewMockModel("outliner", "mock")
	outlineModel.EnqueueResponse(testutil.OutlineJSON("Pumps", "Introduction"))

	sectionModel := model.NewMockModel("writer", "mock")
	sectionModel.EnqueueError(errors.New("boom"))

	s := newSynthesizer(outlineModel, sectionModel)
	article, err := s.Run(context.Background(), "Pump Efficiency", d)
	require.NoError(t, err)
	assert.Contains(t, article.FullText, "[Error generating content for section Introduction]")
}

func TestSynthesizer_KillSwitchRegeneratesOnce(t *testing.T) {
	d := testutil.NewDossierBuilder("Pump Efficiency").
		Document("hydraulics", "manual", "Pump curves describe head versus flow.").
		Build()

	outlineModel := model.NewMockModel("outliner", "mock")
	outlineModel.EnqueueResponse(testutil.OutlineJSON("Pumps", "Introduction"))
	outlineModel.EnqueueResponse(testutil.OutlineJSON("Pumps", "Introduction"))

	sectionModel := model.NewMockModel("writer", "mock")
	sectionModel.EnqueueResponse("Details are in efficiency_report.pdf on the shared drive.")
	sectionModel.EnqueueResponse("Pump curves describe head versus flow behavior.")

	s := newSynthesizer(outlineModel, sectionModel)
	article, err := s.Run(context.Background(), "Pump Efficiency", d)
	require.NoError(t, err)
	assert.NotContains(t, article.FullText, ".pdf")

	// The regeneration pass carries the corrective privacy notice.
	calls := sectionModel.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].System, "PRIVACY NOTICE")
	assert.Contains(t, calls[1].System, "violated privacy rules")
}

func TestSynthesizer_KillSwitchSecondHitFails(t *testing.T) {
	d := testutil.NewDossierBuilder("Pump Efficiency").
		Document("hydraulics", "manual", "Pump curves describe head versus flow.").
		Build()

	outlineModel := model.NewMockModel("outliner", "mock")
	outlineModel.EnqueueResponse(testutil.OutlineJSON("Pumps", "Introduction"))
	outlineModel.EnqueueResponse(testutil.OutlineJSON("Pumps", "Introduction"))

	sectionModel := model.NewMockModel("writer", "mock")
	sectionModel.EnqueueResponse("See gs://internal-bucket/report for the data.")
	sectionModel.EnqueueResponse("Still referencing gs://internal-bucket/report here.")

	s := newSynthesizer(outlineModel, sectionModel)
	_, err := s.Run(context.Background(), "Pump Efficiency", d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrivacyViolation))
}
