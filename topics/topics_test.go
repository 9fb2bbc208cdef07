package topics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/structured"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		topic core.Topic
		want  float64
	}{
		{
			name:  "regulation doubles",
			topic: core.Topic{RelevanceScore: 4, ImpactScore: 4, SourceType: core.SourceRegulation},
			want:  8.0,
		},
		{
			name:  "industry boost",
			topic: core.Topic{RelevanceScore: 6, ImpactScore: 4, SourceType: core.SourceIndustry},
			want:  7.5,
		},
		{
			name:  "academia boost",
			topic: core.Topic{RelevanceScore: 5, ImpactScore: 5, SourceType: core.SourceAcademia},
			want:  6.0,
		},
		{
			name:  "capped at ten",
			topic: core.Topic{RelevanceScore: 9, ImpactScore: 9, SourceType: core.SourceRegulation},
			want:  10.0,
		},
		{
			name:  "unknown source no boost",
			topic: core.Topic{RelevanceScore: 7, ImpactScore: 6, SourceType: "blog"},
			want:  6.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.topic))
		})
	}
}

func TestScanner_ManualOverride(t *testing.T) {
	// No contract calls may happen on the override path.
	scanner := NewScanner(structured.NewContract(nil))

	selection, err := scanner.Run(context.Background(), "Digital Twins for Pump Stations")
	require.NoError(t, err)

	assert.True(t, selection.ManualOverride)
	assert.Equal(t, "Digital Twins for Pump Stations", selection.Selected.Title)
	assert.Equal(t, ManualOverrideScore, selection.Selected.Score)
	assert.Equal(t, "user_defined", selection.Selected.FocusArea)
	assert.Equal(t, core.SourceManual, selection.Selected.SourceType)
}

func TestScanner_SelectsHighestScoredTopic(t *testing.T) {
	mock := model.NewMockModel("m1", "mock")
	// One scan per focus area; the regulation topic must win on its multiplier.
	mock.EnqueueResponse(`{"trends":[
		{"title":"New ISO pump norm","description":"d","relevance_score":7,"impact_score":7,"source_type":"regulation"},
		{"title":"Plant retrofit story","description":"d","relevance_score":9,"impact_score":9,"source_type":"industry"}
	]}`)
	mock.EnqueueResponse(`{"trends":[
		{"title":"University study","description":"d","relevance_score":6,"impact_score":6,"source_type":"academia"}
	]}`)

	scanner := NewScanner(structured.NewContract([]structured.Generator{mock}),
		func(o *Options) { o.FocusAreas = []string{"pumps", "water"} })

	selection, err := scanner.Run(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "New ISO pump norm", selection.Selected.Title)
	assert.Equal(t, 10.0, selection.Selected.Score) // (7+7)/2*2.0 capped
	assert.Equal(t, 3, selection.TotalAnalyzed)
	require.Len(t, selection.Alternatives, 2)
	assert.Equal(t, "Plant retrofit story", selection.Alternatives[0].Title)
	assert.False(t, selection.ManualOverride)
}

func TestScanner_AlternativesAreBounded(t *testing.T) {
	mock := model.NewMockModel("m1", "mock")
	mock.EnqueueResponse(`{"trends":[
		{"title":"t1","description":"d","relevance_score":9,"impact_score":9,"source_type":"industry"},
		{"title":"t2","description":"d","relevance_score":8,"impact_score":9,"source_type":"industry"},
		{"title":"t3","description":"d","relevance_score":8,"impact_score":8,"source_type":"industry"},
		{"title":"t4","description":"d","relevance_score":7,"impact_score":8,"source_type":"industry"},
		{"title":"t5","description":"d","relevance_score":7,"impact_score":7,"source_type":"industry"},
		{"title":"t6","description":"d","relevance_score":6,"impact_score":7,"source_type":"industry"},
		{"title":"t7","description":"d","relevance_score":6,"impact_score":6,"source_type":"industry"}
	]}`)

	scanner := NewScanner(structured.NewContract([]structured.Generator{mock}),
		func(o *Options) { o.FocusAreas = []string{"pumps"} })

	selection, err := scanner.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, selection.Alternatives, MaxAlternatives)
}

func TestScanner_FallsBackToDefaultTopic(t *testing.T) {
	mock := model.NewMockModel("m1", "mock")
	// Every scan fails validation until the repair budget is gone.
	for i := 0; i <= structured.DefaultMaxRepairs; i++ {
		mock.EnqueueResponse("no json here")
	}

	scanner := NewScanner(structured.NewContract([]structured.Generator{mock}),
		func(o *Options) { o.FocusAreas = []string{"pumps"} })

	selection, err := scanner.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Energy Efficiency in Modern Hydraulic Systems", selection.Selected.Title)
	assert.Equal(t, 7.5, selection.Selected.Score)
}
