// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside the content pipeline.
//
// Core goals:
//   - Unify text and JSON-constrained generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Surface classified errors (llmerrors) so retry layers never parse
//     provider-specific messages
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (Gemini, OpenAI, Anthropic) implement the Model interface from
// this package so higher layers (runtimes, stages) remain decoupled from
// vendor SDKs.
package model
