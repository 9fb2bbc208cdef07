package artifact

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentmesh/contentmesh/core"
)

func completedResult() *core.RunResult {
	return &core.RunResult{
		Status: core.StatusCompleted,
		Topic:  "Pump Efficiency",
		Article: &core.Article{
			Title:    "Pump Efficiency",
			FullText: "# Pump Efficiency\n\nBody text.",
		},
		AuditReport: &core.AuditReport{
			Status:           core.AuditPassed,
			VerificationRate: 92.5,
		},
	}
}

func TestSaveRun_FullArtifactSet(t *testing.T) {
	store := NewInMemoryStore()

	names, err := SaveRun(store, "run1", completedResult())
	require.NoError(t, err)
	require.Len(t, names, 3)

	var result, article, report string
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, "pipeline_result_") && strings.HasSuffix(name, ".json"):
			result = name
		case strings.HasPrefix(name, "article_") && strings.HasSuffix(name, ".md"):
			article = name
		case strings.HasPrefix(name, "audit_report_") && strings.HasSuffix(name, ".json"):
			report = name
		}
	}
	require.NotEmpty(t, result)
	require.NotEmpty(t, article)
	require.NotEmpty(t, report)

	data, err := store.Get("run1", result)
	require.NoError(t, err)
	var decoded core.RunResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, core.StatusCompleted, decoded.Status)

	md, err := store.Get("run1", article)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Pump Efficiency")
}

func TestSaveRun_ErrorRunSkipsArticleAndReport(t *testing.T) {
	store := NewInMemoryStore()
	result := &core.RunResult{Status: core.StatusError, Error: "stage failed"}

	names, err := SaveRun(store, "run1", result)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.True(t, strings.HasPrefix(names[0], "pipeline_result_"))
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	require.NoError(t, store.Save("run1", "article.md", []byte("# Title")))

	data, err := store.Get("run1", "article.md")
	require.NoError(t, err)
	assert.Equal(t, "# Title", string(data))

	names, err := store.List("run1")
	require.NoError(t, err)
	assert.Equal(t, []string{"article.md"}, names)

	require.NoError(t, store.Delete("run1", "article.md"))
	_, err = store.Get("run1", "article.md")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete("run1", "article.md"), ErrNotFound)
}

func TestFileStore_ListMissingRun(t *testing.T) {
	store := NewFileStore(t.TempDir())

	names, err := store.List("nope")
	require.NoError(t, err)
	assert.Empty(t, names)
}
