// Package structured turns free-form model output into schema-valid Go
// values.
//
// A Contract wraps one or more generators (typically agent.Runtime instances
// bound to different providers, in preference order). Each call:
//
//  1. Requests JSON output, passing the schema to providers that enforce it
//     server-side and restating it in the prompt otherwise.
//  2. Extracts the first balanced JSON object from the response, tolerating
//     markdown fences and surrounding prose.
//  3. Validates the object against the schema and decodes it into the target.
//  4. On failure, appends the raw output and a repair instruction to the
//     conversation and retries, up to the configured budget.
//
// When one provider exhausts its repair budget the next one in the list is
// tried from scratch.
package structured
