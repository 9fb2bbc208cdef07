// Package pipeline orchestrates the full content run: topic selection,
// context retrieval, synthesis and audit. The orchestrator owns the run
// state machine; each stage's output stays inspectable on the state even
// when a later stage fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contentmesh/contentmesh/artifact"
	"github.com/contentmesh/contentmesh/audit"
	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/dossier"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/metrics"
	"github.com/contentmesh/contentmesh/synthesis"
	"github.com/contentmesh/contentmesh/topics"
)

// ReasonPrivacyViolation marks runs aborted by the kill-switch after the
// permitted regeneration.
const ReasonPrivacyViolation = "privacy_violation"

// Options configure an Orchestrator.
type Options struct {
	// Store persists run artifacts; nil disables persistence.
	Store   artifact.Store
	Metrics *metrics.Metrics
	Logger  logging.Logger
}

// Orchestrator drives one pipeline run through its stages.
type Orchestrator struct {
	scanner     *topics.Scanner
	builder     *dossier.Builder
	synthesizer *synthesis.Synthesizer
	auditor     *audit.Auditor
	opts        Options
}

// NewOrchestrator wires the four stages into a runnable pipeline.
func NewOrchestrator(
	scanner *topics.Scanner,
	builder *dossier.Builder,
	synthesizer *synthesis.Synthesizer,
	auditor *audit.Auditor,
	optFns ...func(o *Options),
) *Orchestrator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{
		scanner:     scanner,
		builder:     builder,
		synthesizer: synthesizer,
		auditor:     auditor,
		opts:        opts,
	}
}

// Run executes a full pipeline run. overrideTopic, when non-empty, bypasses
// topic scanning. Stage failures are captured in the returned result; the
// error return is reserved for context cancellation.
func (o *Orchestrator) Run(ctx context.Context, overrideTopic string) (*core.RunResult, error) {
	state := &core.PipelineState{
		RunID:     uuid.NewString(),
		Status:    core.StatusIdle,
		StartedAt: time.Now(),
	}
	logger := o.runLogger(state.RunID)
	logger.Info("Pipeline run started", "override", overrideTopic != "")

	state.Status = core.StatusRunning

	// Stage 1: topic selection.
	start := o.enterStage(state, core.StageTopicSelection)
	selection, err := o.scanner.Run(ctx, overrideTopic)
	o.leaveStage(state, start, logger, err)
	if err != nil {
		return o.finish(state, o.failResult(state, err), logger), ctx.Err()
	}
	state.Topics = selection
	topic := selection.Selected.Title

	// Stage 2: context retrieval.
	start = o.enterStage(state, core.StageContextRetrieval)
	d, err := o.builder.Build(ctx, topic)
	o.leaveStage(state, start, logger, err)
	if err != nil {
		return o.finish(state, o.failResult(state, err), logger), ctx.Err()
	}
	state.Dossier = d

	// Stage 3: synthesis.
	start = o.enterStage(state, core.StageSynthesis)
	article, err := o.synthesizer.Run(ctx, topic, d)
	o.leaveStage(state, start, logger, err)
	if err != nil {
		result := o.failResult(state, err)
		if errors.Is(err, synthesis.ErrPrivacyViolation) {
			result.Reason = ReasonPrivacyViolation
		}
		return o.finish(state, result, logger), ctx.Err()
	}
	state.Article = article

	// Stage 4: audit.
	start = o.enterStage(state, core.StageAudit)
	report, err := o.auditor.Run(ctx, article, d)
	o.leaveStage(state, start, logger, err)
	if err != nil {
		return o.finish(state, o.failResult(state, err), logger), ctx.Err()
	}
	state.AuditReport = report
	o.opts.Metrics.ObserveVerificationRate(report.VerificationRate)

	result := &core.RunResult{
		Topic:       topic,
		Article:     article,
		AuditReport: report,
		State:       state,
	}
	if report.Passed() {
		state.Status = core.StatusCompleted
		result.Status = core.StatusCompleted
	} else {
		state.Status = core.StatusFailedAudit
		result.Status = core.StatusFailedAudit
		result.Reason = fmt.Sprintf("verification rate %.2f%% below required %.2f%%",
			report.VerificationRate, report.MinimumRequiredRate)
	}
	return o.finish(state, result, logger), nil
}

func (o *Orchestrator) enterStage(state *core.PipelineState, stage core.Stage) time.Time {
	state.CurrentStage = stage
	return time.Now()
}

func (o *Orchestrator) leaveStage(state *core.PipelineState, start time.Time, logger logging.Logger, err error) {
	dur := time.Since(start)
	o.opts.Metrics.ObserveStage(string(state.CurrentStage), dur.Seconds())
	if pl, ok := logger.(*logging.PipelineLogger); ok {
		pl.LogStage(string(state.CurrentStage), dur, err == nil, err)
		return
	}
	if err != nil {
		logger.Error("Stage failed", "stage", string(state.CurrentStage), "error", err.Error())
	}
}

// failResult converts a stage error into the terminal error result.
func (o *Orchestrator) failResult(state *core.PipelineState, err error) *core.RunResult {
	state.Status = core.StatusError
	state.Error = err.Error()
	return &core.RunResult{
		Status: core.StatusError,
		Error:  err.Error(),
		State:  state,
	}
}

// finish stamps the terminal state, records metrics and persists artifacts.
func (o *Orchestrator) finish(state *core.PipelineState, result *core.RunResult, logger logging.Logger) *core.RunResult {
	state.CompletedAt = time.Now()
	o.opts.Metrics.ObserveRun(string(result.Status))

	if o.opts.Store != nil {
		if names, err := artifact.SaveRun(o.opts.Store, state.RunID, result); err != nil {
			logger.Error("Failed to persist run artifacts", "error", err.Error())
		} else {
			logger.Info("Run artifacts saved", "artifacts", len(names))
		}
	}

	logger.Info("Pipeline run finished",
		"status", string(result.Status),
		"duration", state.CompletedAt.Sub(state.StartedAt).String())
	return result
}

func (o *Orchestrator) runLogger(runID string) logging.Logger {
	if pl, ok := o.opts.Logger.(*logging.PipelineLogger); ok {
		return pl.WithRun(runID)
	}
	return o.opts.Logger
}
