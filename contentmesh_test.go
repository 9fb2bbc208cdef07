package contentmesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentmesh/contentmesh/config"
	"github.com/contentmesh/contentmesh/llmerrors"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/structured"
)

func TestUseVertexBackend(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		vertex bool
		want   bool
	}{
		{"api key only", "k", false, false},
		{"vertex only", "", true, true},
		{"api key wins over vertex", "k", true, false},
		{"neither", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Provider.GoogleKey = tt.key
			cfg.Provider.Vertex.Enabled = tt.vertex
			assert.Equal(t, tt.want, useVertexBackend(cfg))
		})
	}
}

func TestGeneratorChain_FallsThrough(t *testing.T) {
	down := model.NewMockModel("m1", "mock")
	down.EnqueueError(llmerrors.NewWithStatus(llmerrors.ErrorTypeTransient, 503, "unavailable"))
	healthy := model.NewMockModel("m2", "mock")
	healthy.EnqueueResponse("prose")

	c := generatorChain([]structured.Generator{down, healthy})
	resp, err := c.Generate(context.Background(), model.Request{})
	require.NoError(t, err)
	assert.Equal(t, "prose", resp.Text)
	assert.Equal(t, "m2", resp.ModelID)
}

func TestGeneratorChain_Empty(t *testing.T) {
	c := generatorChain(nil)
	_, err := c.Generate(context.Background(), model.Request{})
	assert.Error(t, err)
}
