// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API. Structured output prefers the json_schema response
// format; accounts without json_schema access fall back to json_object with
// the schema restated in the prompt by the caller.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/llmerrors"
	"github.com/contentmesh/contentmesh/model"
)

// Options configure the OpenAI model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model. When a schema is requested and the API
// rejects the json_schema response format, the call is retried once with the
// plain json_object format before the error is surfaced.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	messages := buildMessages(req)
	if len(messages) == 0 {
		return nil, llmerrors.New(llmerrors.ErrorTypeBadPrompt, "no messages provided")
	}

	params := m.buildParams(req, messages)
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil && req.Schema != nil && llmerrors.TypeOf(m.classify(err)) == llmerrors.ErrorTypeBadPrompt {
		params.ResponseFormat = jsonObjectFormat()
		resp, err = m.client.Chat.Completions.New(ctx, params)
	}
	if err != nil {
		return nil, m.classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, llmerrors.New(llmerrors.ErrorTypeTransient, "no choices returned")
	}

	ch0 := resp.Choices[0]
	out := &model.Response{
		Text:         ch0.Message.Content,
		ModelID:      m.opts.Model,
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	return out, nil
}

// buildMessages converts conversation turns into OpenAI chat messages.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}

// buildParams assembles the OpenAI request parameters including the response format.
func (m *Model) buildParams(
	req model.Request,
	messages []openai.ChatCompletionMessageParamUnion,
) openai.ChatCompletionNewParams {
	temp := m.opts.Temperature
	if req.Temperature != nil {
		temp = float64(*req.Temperature)
	}
	maxTokens := m.opts.MaxCompletionTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               m.opts.Model,
		Temperature:         openai.Float(temp),
		MaxCompletionTokens: openai.Int(maxTokens),
	}
	switch {
	case req.Schema != nil:
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: req.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	case req.JSONMode:
		params.ResponseFormat = jsonObjectFormat()
	}
	return params
}

func jsonObjectFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
	}
}

// classify maps SDK errors to the shared taxonomy using the HTTP status.
func (m *Model) classify(err error) *llmerrors.Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llmerrors.Error{
			Type:       llmerrors.ClassifyStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
			Err:        err,
			Provider:   "openai",
			ModelID:    m.opts.Model,
		}
	}
	return llmerrors.Classify(err, "openai", m.opts.Model)
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:             m.opts.Model,
		Provider:         "openai",
		SupportsSchema:   true,
		SupportsJSONMode: true,
	}
}

var _ model.Model = (*Model)(nil)
