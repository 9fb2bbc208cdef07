// Package topics implements the topic-selection stage: scanning focus areas
// for high-impact trends, scoring candidates by source credibility, and
// honoring operator overrides.
package topics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/structured"
)

// ManualOverrideScore is assigned to operator-supplied topics; they always
// outrank scanned candidates.
const ManualOverrideScore = 10.0

// MaxAlternatives bounds the runner-up list in a selection.
const MaxAlternatives = 5

// DefaultFocusAreas are the subject areas scanned when none are configured.
func DefaultFocusAreas() []string {
	return []string{
		"hydraulic engineering innovations",
		"energy efficiency in water systems",
		"sustainable pumping solutions",
		"smart water management",
		"renewable energy in hydraulics",
		"water treatment optimization",
		"IoT in hydraulic systems",
	}
}

// sourceMultipliers weight topics by where the signal came from. Regulation
// outranks industry outranks academia; unknown sources get no boost.
var sourceMultipliers = map[core.SourceType]float64{
	core.SourceRegulation: 2.0,
	core.SourceIndustry:   1.5,
	core.SourceAcademia:   1.2,
}

// trendEnvelope is the structured output shape for one focus-area scan.
type trendEnvelope struct {
	Trends []trendItem `json:"trends"`
}

type trendItem struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RelevanceScore float64  `json:"relevance_score"`
	ImpactScore    float64  `json:"impact_score"`
	SourceType     string   `json:"source_type"`
	Keywords       []string `json:"keywords,omitempty"`
}

// Options configure a Scanner.
type Options struct {
	FocusAreas []string
	Logger     logging.Logger
}

// Scanner selects the topic for a pipeline run.
type Scanner struct {
	contract *structured.Contract
	opts     Options
}

// NewScanner creates a Scanner over the given structured output contract.
func NewScanner(contract *structured.Contract, optFns ...func(o *Options)) *Scanner {
	opts := Options{
		FocusAreas: DefaultFocusAreas(),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scanner{contract: contract, opts: opts}
}

// Score computes the final topic score: the mean of relevance and impact,
// boosted by the source multiplier, capped at 10 and rounded to two decimals.
func Score(t core.Topic) float64 {
	multiplier, ok := sourceMultipliers[t.SourceType]
	if !ok {
		multiplier = 1.0
	}
	score := math.Min(10, (t.RelevanceScore+t.ImpactScore)/2*multiplier)
	return math.Round(score*100) / 100
}

// Run selects a topic. A non-empty override bypasses scanning entirely and
// wins with the maximum score.
func (s *Scanner) Run(ctx context.Context, override string) (*core.TopicSelection, error) {
	if override != "" {
		s.opts.Logger.Info("Using manual topic override", "topic", override)
		return &core.TopicSelection{
			Selected: core.Topic{
				Title:       override,
				Description: "Priority topic defined by operator",
				Score:       ManualOverrideScore,
				FocusArea:   "user_defined",
				SourceType:  core.SourceManual,
			},
			ScanDate:       time.Now(),
			ManualOverride: true,
		}, nil
	}
	return s.selectTop(ctx)
}

// selectTop scans every focus area, scores all candidates and returns the
// winner with its best runners-up. A scan that yields nothing falls back to
// a serviceable default topic rather than failing the run.
func (s *Scanner) selectTop(ctx context.Context) (*core.TopicSelection, error) {
	s.opts.Logger.Info("Scanning focus areas for trends", "areas", len(s.opts.FocusAreas))

	var all []core.Topic
	for _, area := range s.opts.FocusAreas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trends, err := s.scanArea(ctx, area)
		if err != nil {
			s.opts.Logger.Warn("Focus area scan failed, skipping", "area", area, "error", err.Error())
			continue
		}
		all = append(all, trends...)
	}

	if len(all) == 0 {
		s.opts.Logger.Warn("No topics found, using default topic")
		return &core.TopicSelection{
			Selected: core.Topic{
				Title:       "Energy Efficiency in Modern Hydraulic Systems",
				Description: "Latest innovations in energy-efficient pumping and water management",
				Score:       7.5,
				FocusArea:   "energy efficiency in water systems",
				SourceType:  core.SourceIndustry,
			},
			ScanDate: time.Now(),
		}, nil
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	alternatives := all[1:]
	if len(alternatives) > MaxAlternatives {
		alternatives = alternatives[:MaxAlternatives]
	}

	s.opts.Logger.Info("Topic selected",
		"topic", all[0].Title, "score", all[0].Score, "analyzed", len(all))

	return &core.TopicSelection{
		Selected:      all[0],
		Alternatives:  alternatives,
		ScanDate:      time.Now(),
		TotalAnalyzed: len(all),
	}, nil
}

// scanArea asks the model for recent trends in one focus area.
func (s *Scanner) scanArea(ctx context.Context, area string) ([]core.Topic, error) {
	temp := float32(0.3)
	req := model.Request{
		System: "You are a trend analyst for hydraulic and energy engineering. " +
			"You report only trends you can describe concretely.",
		Messages:    []core.Message{core.UserMessage(scanPrompt(area))},
		Temperature: &temp,
		MaxTokens:   2048,
		SchemaName:  "trend_scan",
	}

	var envelope trendEnvelope
	if _, err := s.contract.Generate(ctx, req, &envelope); err != nil {
		return nil, err
	}

	topics := make([]core.Topic, 0, len(envelope.Trends))
	for _, item := range envelope.Trends {
		t := core.Topic{
			Title:          item.Title,
			Description:    item.Description,
			RelevanceScore: item.RelevanceScore,
			ImpactScore:    item.ImpactScore,
			FocusArea:      area,
			SourceType:     parseSourceType(item.SourceType),
			Keywords:       item.Keywords,
		}
		t.Score = Score(t)
		topics = append(topics, t)
	}
	return topics, nil
}

func scanPrompt(area string) string {
	return fmt.Sprintf(`Identify recent trends (last 6 months) in: %s

Focus on:
- Technological innovations
- New regulations and standards (EU/USA)
- Industry success stories
- Relevant academic research

Return a JSON object with a "trends" array. For each trend provide title,
description, relevance_score (0-10), impact_score (0-10), source_type
(one of "regulation", "industry", "academia") and keywords.`, area)
}

func parseSourceType(s string) core.SourceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regulation":
		return core.SourceRegulation
	case "academia", "academic":
		return core.SourceAcademia
	case "manual":
		return core.SourceManual
	default:
		return core.SourceIndustry
	}
}
