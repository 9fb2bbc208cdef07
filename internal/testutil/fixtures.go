package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/contentmesh/contentmesh/core"
)

// Article builds a minimal finished article for audit tests.
func Article(title, fullText string) *core.Article {
	return &core.Article{
		Title:    title,
		Subtitle: "Technical Analysis",
		Sections: []core.ArticleSection{{Number: 1, Title: "Introduction", Content: fullText}},
		FullText: fullText,
	}
}

// OutlineJSON renders an article outline payload the way a structured model
// call would return it.
func OutlineJSON(title string, sectionTitles ...string) string {
	outline := core.ArticleOutline{
		Title:                title,
		Subtitle:             "Technical Analysis",
		TargetAudience:       "Engineering professionals",
		EstimatedReadingTime: "8 minutes",
	}
	for i, st := range sectionTitles {
		outline.Sections = append(outline.Sections, core.OutlineSection{
			Number:         i + 1,
			Title:          st,
			Objective:      fmt.Sprintf("Cover %s", st),
			KeyPoints:      []string{"point"},
			TechnicalDepth: "intermediate",
		})
	}
	return mustJSON(outline)
}

// ClaimSetJSON renders a claim extraction payload with one technical claim
// per given text.
func ClaimSetJSON(claimTexts ...string) string {
	var set core.ClaimSet
	for i, text := range claimTexts {
		set.Claims = append(set.Claims, core.Claim{
			ID:      i + 1,
			Text:    text,
			Type:    core.ClaimTechnical,
			Section: "Introduction",
		})
	}
	return mustJSON(set)
}

// VerdictJSON renders one claim verification payload.
func VerdictJSON(verified bool, recommendation string) string {
	v := core.Verdict{
		Verified:       verified,
		Confidence:     0.9,
		Recommendation: recommendation,
	}
	if verified {
		v.SupportingEvidence = "matches the dossier"
	} else {
		v.Confidence = 0.2
		v.Issue = "not supported by the dossier"
	}
	return mustJSON(v)
}

// TrendScanJSON renders a market scan payload with the given topic titles,
// all attributed to industry sources.
func TrendScanJSON(titles ...string) string {
	type trend struct {
		Title          string   `json:"title"`
		Description    string   `json:"description"`
		RelevanceScore float64  `json:"relevance_score"`
		ImpactScore    float64  `json:"impact_score"`
		SourceType     string   `json:"source_type"`
		Keywords       []string `json:"keywords"`
	}
	payload := struct {
		Trends []trend `json:"trends"`
	}{}
	for _, t := range titles {
		payload.Trends = append(payload.Trends, trend{
			Title:          t,
			Description:    "Observed industry trend",
			RelevanceScore: 8,
			ImpactScore:    8,
			SourceType:     "industry",
			Keywords:       []string{"efficiency"},
		})
	}
	return mustJSON(payload)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
