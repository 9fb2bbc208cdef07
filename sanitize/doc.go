// Package sanitize enforces the privacy boundary of the content pipeline.
//
// It provides three layers:
//
//   - RedactText applies typed placeholder redaction (emails, phones, long
//     identifiers) to any text leaving the system, including raw model output.
//   - Sanitizer strips client-identifying patterns and sensitive-keyword
//     lines from retrieved documents before they enter a dossier, recording
//     every removal in a per-run audit log.
//   - KillSwitch scans finished articles for source-system leakage (bucket
//     URIs, internal file names, deny-listed organization names).
//
// Redaction is idempotent: placeholder tokens never match the patterns that
// produced them, so sanitized text can safely pass through again.
package sanitize
