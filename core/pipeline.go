package core

import "time"

// PipelineStatus is the lifecycle state of one pipeline run.
type PipelineStatus string

const (
	// StatusIdle means the run has been created but not started.
	StatusIdle PipelineStatus = "idle"
	// StatusRunning means a stage is currently executing.
	StatusRunning PipelineStatus = "running"
	// StatusCompleted means the article passed audit and was published.
	StatusCompleted PipelineStatus = "completed"
	// StatusFailedAudit means the article was rejected by the auditor.
	// This is a first-class terminal state, not an error.
	StatusFailedAudit PipelineStatus = "failed_audit"
	// StatusError means a stage failed unexpectedly.
	StatusError PipelineStatus = "error"
)

// Stage names one step of the pipeline state machine.
type Stage string

const (
	// StageTopicSelection picks or scores the run's topic.
	StageTopicSelection Stage = "topic_selection"
	// StageContextRetrieval builds the sanitized dossier.
	StageContextRetrieval Stage = "context_retrieval"
	// StageSynthesis writes the article from the dossier.
	StageSynthesis Stage = "synthesis"
	// StageAudit verifies the article's claims against the dossier.
	StageAudit Stage = "audit"
)

// PipelineState tracks one run. It is owned and mutated exclusively by the
// orchestrator driving that run; results of completed stages stay inspectable
// even when a later stage fails.
type PipelineState struct {
	RunID        string          `json:"run_id"`
	Status       PipelineStatus  `json:"status"`
	CurrentStage Stage           `json:"current_stage,omitempty"`
	StartedAt    time.Time       `json:"started_at,omitempty"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`
	Error        string          `json:"error,omitempty"`
	Topics       *TopicSelection `json:"topic_selection,omitempty"`
	Dossier      *Dossier        `json:"dossier,omitempty"`
	Article      *Article        `json:"article,omitempty"`
	AuditReport  *AuditReport    `json:"audit_report,omitempty"`
}

// RunResult is the terminal outcome of one pipeline run, shaped for API
// consumers and artifact persistence.
type RunResult struct {
	Status      PipelineStatus `json:"status"`
	Topic       string         `json:"topic,omitempty"`
	Article     *Article       `json:"article,omitempty"`
	AuditReport *AuditReport   `json:"audit_report,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Error       string         `json:"error,omitempty"`
	State       *PipelineState `json:"pipeline_state"`
}
