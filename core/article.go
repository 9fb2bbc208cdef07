package core

import (
	"strings"
	"time"
)

// OutlineSection is one planned section of an article, produced by the
// structured outline call before any prose is written.
type OutlineSection struct {
	Number         int      `json:"section_number"`
	Title          string   `json:"section_title"`
	Objective      string   `json:"objective"`
	KeyPoints      []string `json:"key_points"`
	TechnicalDepth string   `json:"technical_depth"`
}

// ArticleOutline is the structured plan the synthesizer requests from the
// model before writing sections sequentially.
type ArticleOutline struct {
	Title                string           `json:"title"`
	Subtitle             string           `json:"subtitle"`
	Sections             []OutlineSection `json:"sections"`
	TargetAudience       string           `json:"target_audience"`
	EstimatedReadingTime string           `json:"estimated_reading_time"`
}

// ArticleSection is one written section of the final article.
type ArticleSection struct {
	Number  int    `json:"section_number"`
	Title   string `json:"section_title"`
	Content string `json:"content"`
}

// ArticleMetadata carries derived facts about a finished article plus the
// audit flags set after verification.
type ArticleMetadata struct {
	Topic           string    `json:"topic"`
	TargetAudience  string    `json:"target_audience"`
	ReadingTime     string    `json:"reading_time"`
	WordCount       int       `json:"word_count"`
	SectionCount    int       `json:"sections_count"`
	GeneratedAt     time.Time `json:"generated_at"`
	AuditPassed     bool      `json:"audit_passed"`
	ReferencesAdded bool      `json:"references_added"`
}

// Article is the synthesized output for one topic. Sections are written in
// order, each with the previous sections as context, then assembled into
// FullText.
type Article struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	Sections []ArticleSection `json:"sections"`
	FullText string           `json:"full_text"`
	Metadata ArticleMetadata  `json:"metadata"`
}

// WordCount counts whitespace-separated tokens in the full text.
func (a *Article) WordCount() int {
	return len(strings.Fields(a.FullText))
}
