// Package core defines the shared domain records passed between pipeline
// stages: personas, sanitized documents, dossiers, articles, claims and audit
// reports. Every record crossing a model boundary is a typed struct validated
// at that boundary; no stage hands free-form maps to the next one.
//
// Ownership rules:
//   - A Dossier is created once by the retrieval stage and never mutated
//     afterwards. It is the only admissible evidence for synthesis and audit.
//   - PipelineState is mutated only by the orchestrator driving its run.
//   - Personas are immutable after construction.
package core
