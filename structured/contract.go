package structured

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/internal/util"
	"github.com/contentmesh/contentmesh/llmerrors"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/model"
)

// DefaultMaxRepairs is the number of repair retries after the first attempt.
const DefaultMaxRepairs = 2

// Generator produces one model response for a request. agent.Runtime
// satisfies this.
type Generator interface {
	Generate(ctx context.Context, req model.Request) (*model.Response, error)
}

// Options configure a Contract.
type Options struct {
	// MaxRepairs bounds repair rounds after the first; each round tries
	// every generator in preference order before a repair message is added.
	MaxRepairs int
	SchemaName string
	Logger     logging.Logger
}

// Result carries metadata about a successful structured generation.
type Result struct {
	Raw      string `json:"raw"`      // the extracted JSON text
	ModelID  string `json:"model_id"` // model that produced the accepted output
	Attempts int    `json:"attempts"` // total attempts across all generators
}

// Contract enforces schema-valid JSON output over one or more generators
// tried in preference order.
type Contract struct {
	generators []Generator
	opts       Options
}

// NewContract creates a Contract over generators in preference order. At
// least one generator is required.
func NewContract(generators []Generator, optFns ...func(o *Options)) *Contract {
	opts := Options{
		MaxRepairs: DefaultMaxRepairs,
		SchemaName: "response",
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Contract{generators: generators, opts: opts}
}

// Generate runs the request until the decoded output satisfies the schema
// derived from target, which must be a non-nil pointer to a struct. The
// accepted JSON is decoded into target.
//
// Each round tries every generator in preference order against one shared
// conversation, so a healthy fallback provider is reached within the first
// round rather than after the primary's whole repair budget. The repair
// message is appended only after a full round fails, replaying the round's
// last rejected output.
func (c *Contract) Generate(ctx context.Context, req model.Request, target any) (*Result, error) {
	if len(c.generators) == 0 {
		return nil, llmerrors.New(llmerrors.ErrorTypeOffline, "no structured output providers configured")
	}

	schema := req.Schema
	if schema == nil {
		schema = util.CreateSchema(target)
	}
	req.Schema = schema
	req.JSONMode = true
	if req.SchemaName == "" {
		req.SchemaName = c.opts.SchemaName
	}

	messages := make([]core.Message, len(req.Messages))
	copy(messages, req.Messages)

	totalAttempts := 0
	var lastErr error

	for round := 0; round <= c.opts.MaxRepairs; round++ {
		var badText string
		var decodeErr error

		for _, gen := range c.generators {
			totalAttempts++
			attemptReq := req
			attemptReq.Messages = messages

			resp, err := gen.Generate(ctx, attemptReq)
			if err != nil {
				lastErr = err
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.opts.Logger.Warn("Structured output provider failed, trying next", "error", err.Error())
				continue
			}

			raw, err := c.decode(resp.Text, schema, target)
			if err == nil {
				return &Result{Raw: raw, ModelID: resp.ModelID, Attempts: totalAttempts}, nil
			}
			lastErr = err
			decodeErr = err
			badText = resp.Text
			c.opts.Logger.Warn("Structured output rejected",
				"round", round+1, "error", err.Error())
		}

		// A repair message only helps when some provider produced output to
		// correct; a round of pure transport errors retries unchanged.
		if decodeErr != nil {
			messages = append(messages,
				core.AssistantMessage(badText),
				core.UserMessage(repairMessage(decodeErr, schema)),
			)
		}
	}

	return nil, fmt.Errorf("structured generation failed after %d attempts: %w", totalAttempts, lastErr)
}

// decode extracts, validates and unmarshals one response. Returns the
// extracted JSON on success.
func (c *Contract) decode(text string, schema map[string]any, target any) (string, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return "", fmt.Errorf("no valid JSON object found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", fmt.Errorf("response is not a JSON object: %w", err)
	}
	if err := util.ValidateParameters(obj, schema); err != nil {
		return "", err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return "", fmt.Errorf("response does not match target shape: %w", err)
	}
	return raw, nil
}

// repairMessage restates the requirement and the schema so the model can fix
// its previous output in place.
func repairMessage(cause error, schema map[string]any) string {
	schemaJSON, _ := json.Marshal(schema)
	return fmt.Sprintf(
		"Your previous response was not valid: %s. "+
			"Respond again with ONLY a single JSON object matching this schema exactly, "+
			"with no markdown fences or commentary:\n%s",
		cause.Error(), string(schemaJSON))
}
