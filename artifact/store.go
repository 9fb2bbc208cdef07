package artifact

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/contentmesh/contentmesh/core"
)

// Store persists named artifacts per pipeline run.
type Store interface {
	Save(runID, name string, data []byte) error
	Get(runID, name string) ([]byte, error)
	List(runID string) ([]string, error)
	Delete(runID, name string) error
}

// timestampLayout matches the artifact naming operators grep for.
const timestampLayout = "20060102_150405"

// SaveRun persists the standard artifact set for one completed run: the full
// result JSON, the article markdown (when present) and the audit report JSON
// (when present). Returns the artifact names written.
func SaveRun(store Store, runID string, result *core.RunResult) ([]string, error) {
	ts := time.Now().Format(timestampLayout)
	var names []string

	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run result: %w", err)
	}
	name := fmt.Sprintf("pipeline_result_%s.json", ts)
	if err := store.Save(runID, name, resultJSON); err != nil {
		return nil, fmt.Errorf("save %s: %w", name, err)
	}
	names = append(names, name)

	if result.Article != nil && result.Article.FullText != "" {
		name = fmt.Sprintf("article_%s.md", ts)
		if err := store.Save(runID, name, []byte(result.Article.FullText)); err != nil {
			return nil, fmt.Errorf("save %s: %w", name, err)
		}
		names = append(names, name)
	}

	if result.AuditReport != nil {
		auditJSON, err := json.MarshalIndent(result.AuditReport, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal audit report: %w", err)
		}
		name = fmt.Sprintf("audit_report_%s.json", ts)
		if err := store.Save(runID, name, auditJSON); err != nil {
			return nil, fmt.Errorf("save %s: %w", name, err)
		}
		names = append(names, name)
	}

	return names, nil
}
