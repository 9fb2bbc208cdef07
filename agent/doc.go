// Package agent provides the resilient execution runtime that every pipeline
// stage uses to call language models.
//
// A Runtime wraps a model invoker with:
//
//   - A retry budget scaled to the candidate pool (minimum 3 attempts)
//   - Quota-aware rotation through a shared CandidatePool, re-binding the
//     invoker to the next model id without consuming backoff
//   - Exponential backoff for transient failures when rotation is unavailable
//   - Fail-fast behavior when the runtime never initialized (offline)
//   - Mandatory redaction of every model response before callers see it
//
// Rotation and backoff decisions key off the classified error taxonomy in
// package llmerrors, never off provider message text.
package agent
