package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sectionPayload struct {
	Title string   `json:"title" description:"Section heading"`
	Words int      `json:"words"`
	Tags  []string `json:"tags,omitempty"`
}

type outlinePayload struct {
	Title    string           `json:"title"`
	Draft    *bool            `json:"draft"`
	Sections []sectionPayload `json:"sections"`
	Internal string           `json:"-"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(outlinePayload{})

	assert.Equal(t, "object", schema["type"])
	// Pointer and omitempty fields are optional; "-" fields vanish entirely.
	assert.ElementsMatch(t, []string{"title", "sections"}, schema["required"])

	properties := schema["properties"].(map[string]any)
	assert.NotContains(t, properties, "Internal")

	sections := properties["sections"].(map[string]any)
	assert.Equal(t, "array", sections["type"])

	items := sections["items"].(map[string]any)
	assert.Equal(t, "object", items["type"])
	itemProps := items["properties"].(map[string]any)
	assert.Equal(t, "Section heading", itemProps["title"].(map[string]any)["description"])
	assert.Equal(t, "integer", itemProps["words"].(map[string]any)["type"])
}

func TestCreateSchema_Pointer(t *testing.T) {
	assert.Equal(t, CreateSchema(sectionPayload{}), CreateSchema(&sectionPayload{}))
}

func TestValidateParameters(t *testing.T) {
	schema := CreateSchema(sectionPayload{})

	tests := []struct {
		name    string
		params  map[string]any
		wantErr string
	}{
		{
			name:   "valid",
			params: map[string]any{"title": "Intro", "words": 120},
		},
		{
			name:   "json numbers decode as float64",
			params: map[string]any{"title": "Intro", "words": float64(120)},
		},
		{
			name:    "fractional value rejected for integer field",
			params:  map[string]any{"title": "Intro", "words": 1.5},
			wantErr: "words",
		},
		{
			name:    "missing required field",
			params:  map[string]any{"words": 120},
			wantErr: "title",
		},
		{
			name:    "wrong type",
			params:  map[string]any{"title": 42, "words": 120},
			wantErr: "title",
		},
		{
			name:   "extra fields tolerated",
			params: map[string]any{"title": "Intro", "words": 120, "extra": true},
		},
		{
			name:   "nil satisfies any type",
			params: map[string]any{"title": "Intro", "words": 120, "tags": nil},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Field)
		})
	}
}

// Schemas survive a JSON round trip, where "required" becomes []any.
func TestValidateParameters_RoundTrippedSchema(t *testing.T) {
	schema := CreateSchema(sectionPayload{})
	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	err = ValidateParameters(map[string]any{"words": 1}, decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}
