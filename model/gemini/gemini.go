// Package gemini provides an implementation of model.Model using the Google
// GenAI SDK. It supports both the API-key Gemini backend and the Vertex AI
// backend; structured output is requested via the JSON response MIME type and
// validated by the caller.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/llmerrors"
	"github.com/contentmesh/contentmesh/model"
)

// Options configure the Gemini model adapter.
type Options struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	APIKey          string
	// Vertex switches the client to the Vertex AI backend. Project and
	// Location are required there; APIKey is ignored.
	Vertex   bool
	Project  string
	Location string
}

// Model wraps the GenAI SDK behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Gemini model using the official client.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:           DefaultModel,
		Temperature:     0.7,
		MaxOutputTokens: 8192,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{}
	if opts.Vertex {
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = opts.Project
		cfg.Location = opts.Location
	} else {
		cfg.Backend = genai.BackendGeminiAPI
		cfg.APIKey = opts.APIKey
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, llmerrors.Wrap(llmerrors.ErrorTypeAuth, err, "failed to create gemini client")
	}
	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a new Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:           DefaultModel,
		Temperature:     0.7,
		MaxOutputTokens: 8192,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Client exposes the underlying GenAI client, mainly for catalog listing.
func (m *Model) Client() *genai.Client { return m.client }

// WithModel rebinds the adapter to another model id, sharing the client.
// Candidate rotation swaps model ids without re-authenticating.
func (m *Model) WithModel(modelID string) *Model {
	clone := *m
	clone.opts.Model = modelID
	return &clone
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	contents := buildContents(req.Messages)
	if len(contents) == 0 {
		return nil, llmerrors.New(llmerrors.ErrorTypeBadPrompt, "no messages provided")
	}

	temp := m.opts.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTokens := m.opts.MaxOutputTokens
	if req.MaxTokens > 0 {
		maxTokens = int32(req.MaxTokens)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: maxTokens,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.JSONMode || req.Schema != nil {
		config.ResponseMIMEType = "application/json"
	}

	result, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, config)
	if err != nil {
		return nil, m.classify(err)
	}
	if result == nil {
		return nil, llmerrors.New(llmerrors.ErrorTypeTransient, "empty response from gemini api")
	}

	resp := &model.Response{
		Text:         result.Text(),
		ModelID:      m.opts.Model,
		FinishReason: finishReason(result),
	}
	if um := result.UsageMetadata; um != nil {
		resp.Usage = &model.TokenUsage{
			PromptTokens:     int(um.PromptTokenCount),
			CompletionTokens: int(um.CandidatesTokenCount),
			TotalTokens:      int(um.TotalTokenCount),
		}
	}
	return resp, nil
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	provider := "gemini"
	if m.opts.Vertex {
		provider = "vertex"
	}
	return model.Info{
		Name:             m.opts.Model,
		Provider:         provider,
		SupportsSchema:   false,
		SupportsJSONMode: true,
	}
}

// buildContents converts conversation turns to GenAI contents. Gemini uses
// "model" instead of "assistant"; system turns are handled separately.
func buildContents(messages []core.Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Content == "" || msg.Role == core.RoleSystem {
			continue
		}
		role := "user"
		if msg.Role == core.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return contents
}

func finishReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 {
		return "unknown"
	}
	if fr := result.Candidates[0].FinishReason; fr != "" {
		return string(fr)
	}
	return "stop"
}

// classify maps SDK errors to the shared taxonomy, preferring the structured
// status code over message text.
func (m *Model) classify(err error) *llmerrors.Error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &llmerrors.Error{
			Type:       llmerrors.ClassifyStatus(apiErr.Code),
			StatusCode: apiErr.Code,
			Message:    fmt.Sprintf("gemini api error: %s", apiErr.Message),
			Err:        err,
			Provider:   m.Info().Provider,
			ModelID:    m.opts.Model,
		}
	}
	return llmerrors.Classify(err, m.Info().Provider, m.opts.Model)
}

var _ model.Model = (*Model)(nil)
