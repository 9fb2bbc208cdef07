package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the first choice when catalog discovery is unavailable.
const DefaultModel = "gemini-2.0-flash-exp"

// DefaultVertexModel is the fixed model used on the Vertex AI backend, where
// per-key catalog discovery does not apply.
const DefaultVertexModel = "gemini-1.5-flash"

// priorityOrder lists model ids confirmed to work with text generation, best
// first. Discovery intersects the live catalog with this list; ids the
// catalog no longer advertises are dropped, new ids are ignored until vetted.
var priorityOrder = []string{
	"gemini-2.0-flash-exp",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-flash-001",
	"gemini-1.5-flash-002",
	"gemini-1.5-flash-8b",
	"gemini-1.5-pro",
	"gemini-1.5-pro-001",
	"gemini-1.5-pro-002",
	"gemini-pro",
}

// excludedSubstrings filters catalog entries that advertise generateContent
// but do not suit long-form text work.
var excludedSubstrings = []string{"vision", "gemma"}

// DefaultCandidates returns the vetted model ids in priority order, used when
// the live catalog cannot be listed.
func DefaultCandidates() []string {
	out := make([]string, len(priorityOrder))
	copy(out, priorityOrder)
	return out
}

// FilterCandidates intersects available model ids with the vetted list,
// returning them in priority order. Ids may carry the catalog's "models/"
// prefix.
func FilterCandidates(available []string) []string {
	seen := make(map[string]bool, len(available))
	for _, id := range available {
		id = strings.TrimPrefix(id, "models/")
		if isExcluded(id) {
			continue
		}
		seen[id] = true
	}

	var out []string
	for _, id := range priorityOrder {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}

func isExcluded(id string) bool {
	lower := strings.ToLower(id)
	for _, sub := range excludedSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// ListCandidates queries the live model catalog and returns the vetted,
// generation-capable ids in priority order. Falls back to the static list
// when listing fails or yields nothing usable, so a flaky catalog endpoint
// never leaves the pipeline without candidates.
func ListCandidates(ctx context.Context, client *genai.Client) []string {
	var available []string
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return DefaultCandidates()
		}
		if m == nil || !supportsGeneration(m) {
			continue
		}
		available = append(available, m.Name)
	}

	candidates := FilterCandidates(available)
	if len(candidates) == 0 {
		return DefaultCandidates()
	}
	return candidates
}

func supportsGeneration(m *genai.Model) bool {
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}
