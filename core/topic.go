package core

import "time"

// SourceType labels where a candidate topic was observed. Regulatory signals
// outrank industry ones which outrank academic ones in scoring.
type SourceType string

const (
	// SourceRegulation marks topics driven by new norms or standards.
	SourceRegulation SourceType = "regulation"
	// SourceIndustry marks topics from industry case studies.
	SourceIndustry SourceType = "industry"
	// SourceAcademia marks topics from academic publications.
	SourceAcademia SourceType = "academia"
	// SourceManual marks an operator-supplied override topic.
	SourceManual SourceType = "manual"
)

// Topic is one candidate subject for a pipeline run.
type Topic struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	RelevanceScore float64    `json:"relevance_score"`
	ImpactScore    float64    `json:"impact_score"`
	Score          float64    `json:"score"`
	FocusArea      string     `json:"focus_area"`
	SourceType     SourceType `json:"source_type"`
	Keywords       []string   `json:"keywords,omitempty"`
}

// TopicSelection is the result of one topic-selection pass: the winner, the
// best runners-up and scan metadata.
type TopicSelection struct {
	Selected       Topic     `json:"selected_topic"`
	Alternatives   []Topic   `json:"alternatives"`
	ScanDate       time.Time `json:"scan_date"`
	TotalAnalyzed  int       `json:"total_topics_analyzed"`
	ManualOverride bool      `json:"manual_override,omitempty"`
}
