package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/contentmesh/contentmesh/core"
)

// Request captures the normalized model input produced by pipeline stages.
// Schema implies JSON output; providers that cannot enforce a schema
// server-side treat it as JSONMode and leave validation to the caller.
type Request struct {
	System      string         `json:"system,omitempty"`      // system instruction
	Messages    []core.Message `json:"messages"`              // conversation turns
	Temperature *float32       `json:"temperature,omitempty"` // nil means provider default
	MaxTokens   int64          `json:"max_tokens,omitempty"`  // 0 means provider default
	JSONMode    bool           `json:"json_mode,omitempty"`   // constrain output to a JSON object
	Schema      map[string]any `json:"schema,omitempty"`      // JSON schema for structured output
	SchemaName  string         `json:"schema_name,omitempty"` // schema label for providers that require one
}

// Prompt returns the concatenated text of all user messages. Convenience for
// providers and mocks that key off the request text.
func (r Request) Prompt() string {
	var out string
	for _, m := range r.Messages {
		if m.Role == core.RoleUser {
			if out != "" {
				out += "\n"
			}
			out += m.Content
		}
	}
	return out
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final output of one generation call.
type Response struct {
	Text         string      `json:"text"`
	ModelID      string      `json:"model_id"`
	FinishReason string      `json:"finish_reason,omitempty"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name             string `json:"name"`
	Provider         string `json:"provider"`           // "gemini", "openai", "anthropic", "vertex"
	SupportsSchema   bool   `json:"supports_schema"`    // server-side JSON schema enforcement
	SupportsJSONMode bool   `json:"supports_json_mode"` // JSON object constraint without a schema
}

// Model is the minimal interface required by runtimes and stages to drive
// generation. Implementations classify failures via llmerrors before
// returning them.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// scriptStep is one queued outcome for a MockModel.
type scriptStep struct {
	text string
	err  error
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Scripted outcomes (Enqueue*) take precedence and are consumed in order;
// otherwise canned responses are matched by prompt text.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	script    []scriptStep
	calls     []Request
}

// NewMockModel constructs a MockModel with JSON support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:             name,
			Provider:         provider,
			SupportsSchema:   true,
			SupportsJSONMode: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// EnqueueResponse queues a successful outcome consumed before canned responses.
func (m *MockModel) EnqueueResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scriptStep{text: text})
}

// EnqueueError queues a failing outcome consumed before canned responses.
func (m *MockModel) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scriptStep{err: err})
}

// Calls returns a copy of every request this mock has served.
func (m *MockModel) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Generate has been invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	if len(m.script) > 0 {
		step := m.script[0]
		m.script = m.script[1:]
		m.mu.Unlock()
		if step.err != nil {
			return nil, step.err
		}
		return &Response{Text: step.text, ModelID: m.info.Name, FinishReason: "stop"}, nil
	}
	prompt := req.Prompt()
	full := m.responses[prompt]
	m.mu.Unlock()

	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", prompt)
	}
	return &Response{Text: full, ModelID: m.info.Name, FinishReason: "stop"}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

var _ Model = (*MockModel)(nil)
