// Package synthesis implements the article-writing stage. The dossier is the
// sole source of truth: an outline is derived from it first, then sections
// are written sequentially with all previous sections in context so the
// article stays coherent. Finished articles pass the kill-switch before they
// leave the stage; a single regeneration is attempted on violation.
package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/model"
	"github.com/contentmesh/contentmesh/sanitize"
	"github.com/contentmesh/contentmesh/structured"
)

// ErrPrivacyViolation is returned when the kill-switch still triggers after
// the single permitted regeneration. The API layer maps it to a client error.
var ErrPrivacyViolation = errors.New("privacy violation: unable to generate safe content")

// Options configure a Synthesizer.
type Options struct {
	KillSwitch  *sanitize.KillSwitch
	OutlineTemp float32
	SectionTemp float32
	Logger      logging.Logger
}

// Synthesizer writes technical articles from sanitized dossiers.
type Synthesizer struct {
	contract *structured.Contract
	writer   structured.Generator
	opts     Options
}

// NewSynthesizer creates a Synthesizer. The contract produces the outline;
// the writer produces section prose.
func NewSynthesizer(contract *structured.Contract, writer structured.Generator, optFns ...func(o *Options)) *Synthesizer {
	opts := Options{
		KillSwitch:  sanitize.NewKillSwitch(),
		OutlineTemp: 0.4,
		SectionTemp: 0.5,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Synthesizer{contract: contract, writer: writer, opts: opts}
}

// Run produces the article for a topic. On a kill-switch hit the whole
// article is regenerated exactly once with a corrective notice; a second hit
// fails the stage.
func (s *Synthesizer) Run(ctx context.Context, topic string, d *core.Dossier) (*core.Article, error) {
	article, err := s.synthesize(ctx, topic, d, "")
	if err != nil {
		return nil, err
	}

	hits := s.scan(article)
	if len(hits) == 0 {
		return article, nil
	}

	s.opts.Logger.Warn("Kill-switch triggered on article, regenerating once", "hits", strings.Join(hits, ", "))
	article, err = s.synthesize(ctx, topic, d, sanitize.ViolationNotice(hits))
	if err != nil {
		return nil, err
	}
	if hits := s.scan(article); len(hits) > 0 {
		s.opts.Logger.Error("Kill-switch triggered after regeneration", "hits", strings.Join(hits, ", "))
		return nil, ErrPrivacyViolation
	}
	return article, nil
}

func (s *Synthesizer) scan(a *core.Article) []string {
	hits := s.opts.KillSwitch.Scan(a.FullText)
	hits = append(hits, s.opts.KillSwitch.Scan(a.Title)...)
	return hits
}

// synthesize runs one full outline-then-sections pass. notice carries the
// kill-switch corrective instruction on the regeneration pass.
func (s *Synthesizer) synthesize(ctx context.Context, topic string, d *core.Dossier, notice string) (*core.Article, error) {
	evidence := buildEvidence(topic, d)

	outline := s.outline(ctx, topic, evidence, notice)
	s.opts.Logger.Info("Article outline ready", "sections", len(outline.Sections))

	var sections []core.ArticleSection
	var previous strings.Builder
	for _, spec := range outline.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content := s.writeSection(ctx, spec, evidence, previous.String(), notice)
		sections = append(sections, core.ArticleSection{
			Number:  spec.Number,
			Title:   spec.Title,
			Content: content,
		})
		fmt.Fprintf(&previous, "\n\n## %s\n%s", spec.Title, content)
	}

	article := assemble(outline, sections)
	article.Metadata = core.ArticleMetadata{
		Topic:          topic,
		TargetAudience: outline.TargetAudience,
		ReadingTime:    outline.EstimatedReadingTime,
		WordCount:      article.WordCount(),
		SectionCount:   len(sections),
		GeneratedAt:    time.Now(),
	}

	s.opts.Logger.Info("Article synthesized",
		"title", article.Title, "words", article.Metadata.WordCount)
	return article, nil
}

// outline derives the article structure from the evidence. Outline failures
// degrade to a minimal single-section structure instead of failing the run.
func (s *Synthesizer) outline(ctx context.Context, topic, evidence, notice string) *core.ArticleOutline {
	temp := s.opts.OutlineTemp
	req := model.Request{
		System:      seniorEngineerRole + noticeSuffix(notice),
		Messages:    []core.Message{core.UserMessage(outlinePrompt(topic, evidence))},
		Temperature: &temp,
		MaxTokens:   2048,
		SchemaName:  "article_outline",
	}

	var outline core.ArticleOutline
	if _, err := s.contract.Generate(ctx, req, &outline); err != nil || len(outline.Sections) == 0 {
		if err != nil {
			s.opts.Logger.Warn("Outline generation failed, using default structure", "error", err.Error())
		}
		return defaultOutline(topic)
	}
	return &outline
}

// writeSection produces the prose for one section. Failures degrade to an
// inline error marker so one bad section does not abort the article.
func (s *Synthesizer) writeSection(ctx context.Context, spec core.OutlineSection, evidence, previous, notice string) string {
	temp := s.opts.SectionTemp
	req := model.Request{
		System:      seniorEngineerRole + noticeSuffix(notice),
		Messages:    []core.Message{core.UserMessage(sectionPrompt(spec, evidence, previous))},
		Temperature: &temp,
		MaxTokens:   1024,
	}

	resp, err := s.writer.Generate(ctx, req)
	if err != nil {
		s.opts.Logger.Error("Section generation failed",
			"section", spec.Number, "error", err.Error())
		return fmt.Sprintf("[Error generating content for section %s]", spec.Title)
	}
	s.opts.Logger.Info("Section written", "section", spec.Number, "chars", len(resp.Text))
	return strings.TrimSpace(resp.Text)
}

// defaultOutline is the degraded structure used when outline generation
// fails entirely.
func defaultOutline(topic string) *core.ArticleOutline {
	return &core.ArticleOutline{
		Title:    topic,
		Subtitle: "Technical Analysis",
		Sections: []core.OutlineSection{{
			Number:         1,
			Title:          "Introduction",
			Objective:      "Introduce the topic",
			KeyPoints:      []string{"Context", "Importance", "Scope"},
			TechnicalDepth: "basic",
		}},
		TargetAudience:       "Engineering professionals",
		EstimatedReadingTime: "5 minutes",
	}
}

// assemble renders the final markdown document.
func assemble(outline *core.ArticleOutline, sections []core.ArticleSection) *core.Article {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n## %s\n\n", outline.Title, outline.Subtitle)
	fmt.Fprintf(&b, "**Audience:** %s  \n**Reading time:** %s\n\n---\n",
		outline.TargetAudience, outline.EstimatedReadingTime)

	for _, sec := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n\n---\n", sec.Title, sec.Content)
	}

	return &core.Article{
		Title:    outline.Title,
		Subtitle: outline.Subtitle,
		Sections: sections,
		FullText: b.String(),
	}
}

const seniorEngineerRole = "You are a senior engineer writing a world-class technical article. " +
	"The provided technical context is your only source of truth."

func noticeSuffix(notice string) string {
	if notice == "" {
		return ""
	}
	return "\n\nPRIVACY NOTICE: " + notice
}

// buildEvidence renders the dossier header plus its technical context blob.
func buildEvidence(topic string, d *core.Dossier) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TOPIC: %s\n", topic)
	fmt.Fprintf(&b, "DOCUMENTS ANALYZED: %d\n", d.TotalDocuments)
	fmt.Fprintf(&b, "DISCIPLINES: %s\n\n", strings.Join(d.DisciplinesCovered, ", "))
	b.WriteString(d.TechnicalContext())
	return b.String()
}

func outlinePrompt(topic, evidence string) string {
	return fmt.Sprintf(`TECHNICAL CONTEXT (source of truth):
%s

TASK:
Design the structure of a technical article about: %s

REQUIREMENTS:
- The content must read as high-level engineering, NOT generic marketing
- Use precise technical terminology
- Include physical principles and formulas where relevant
- Organize into logical sections, each with a clear objective

Return a JSON object with title, subtitle, sections (each with
section_number, section_title, objective, key_points and technical_depth of
"basic", "intermediate" or "advanced"), target_audience and
estimated_reading_time.`, evidence, topic)
}

func sectionPrompt(spec core.OutlineSection, evidence, previous string) string {
	if previous == "" {
		previous = "This is the first section"
	}
	return fmt.Sprintf(`TECHNICAL CONTEXT (source of truth):
%s

PREVIOUS SECTIONS:
%s

TASK:
Write the following article section:

Section #%d: %s
Objective: %s
Key points: %s
Technical depth: %s

REQUIREMENTS:
- High-level engineering content (NOT marketing)
- Use data and principles from the TECHNICAL CONTEXT provided
- Use precise technical terminology
- Stay coherent with previous sections
- Length: 300-500 words

IMPORTANT: Produce only the content of this section, without the section title.`,
		evidence, previous,
		spec.Number, spec.Title, spec.Objective,
		strings.Join(spec.KeyPoints, ", "), spec.TechnicalDepth)
}
