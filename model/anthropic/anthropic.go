// Package anthropic provides a model wrapper for the Anthropic Claude API.
// Claude has no server-side JSON response format, so JSON-constrained
// requests get an explicit instruction appended to the system prompt and the
// caller validates the result.
package anthropic

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/llmerrors"
	"github.com/contentmesh/contentmesh/model"
)

const jsonInstruction = "Respond with a single valid JSON object and nothing else. " +
	"Do not wrap the JSON in markdown fences or add commentary."

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	messages := buildMessages(req.Messages)
	if len(messages) == 0 {
		return nil, llmerrors.New(llmerrors.ErrorTypeBadPrompt, "no messages provided")
	}

	temp := m.opts.Temperature
	if req.Temperature != nil {
		temp = float64(*req.Temperature)
	}
	maxTokens := m.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temp),
	}
	if blocks := systemBlocks(req); len(blocks) > 0 {
		params.System = blocks
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, m.classify(err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}

	finishReason := "stop"
	if resp.StopReason != "" {
		finishReason = string(resp.StopReason)
	}

	return &model.Response{
		Text:         text,
		ModelID:      string(m.opts.Model),
		FinishReason: finishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// buildMessages converts conversation turns to the Anthropic message format.
// System turns are handled separately via the System parameter.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range messages {
		if msg.Content == "" || msg.Role == core.RoleSystem {
			continue
		}
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == core.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

// systemBlocks collects the request system instruction plus any system turns,
// appending the JSON-only instruction when structured output is requested.
func systemBlocks(req model.Request) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	if req.System != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: req.System})
	}
	for _, msg := range req.Messages {
		if msg.Role == core.RoleSystem && msg.Content != "" {
			blocks = append(blocks, anthropic.TextBlockParam{Text: msg.Content})
		}
	}
	if req.JSONMode || req.Schema != nil {
		blocks = append(blocks, anthropic.TextBlockParam{Text: jsonInstruction})
	}
	return blocks
}

// classify maps SDK errors to the shared taxonomy using the HTTP status.
func (m *Model) classify(err error) *llmerrors.Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &llmerrors.Error{
			Type:       llmerrors.ClassifyStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
			Err:        err,
			Provider:   "anthropic",
			ModelID:    string(m.opts.Model),
		}
	}
	return llmerrors.Classify(err, "anthropic", string(m.opts.Model))
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:             string(m.opts.Model),
		Provider:         "anthropic",
		SupportsSchema:   false,
		SupportsJSONMode: true,
	}
}

var _ model.Model = (*Model)(nil)
