package core

// Persona is the immutable identity of one logical agent: its name, the
// system instruction fixed at construction time, the sampling temperature and
// the model the persona prefers when a catalog is available. Construct once,
// pass by value, never mutate.
type Persona struct {
	Name              string  `json:"name"`
	SystemInstruction string  `json:"system_instruction"`
	Temperature       float32 `json:"temperature"`
	PreferredModelID  string  `json:"preferred_model_id"`
}

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries instructions or context for the model.
	RoleSystem Role = "system"
	// RoleUser carries input from the caller.
	RoleUser Role = "user"
	// RoleAssistant carries model output fed back into the conversation.
	RoleAssistant Role = "assistant"
)

// Message is a single (role, content) entry in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system message.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }

// UserMessage builds a user message.
func UserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }

// AssistantMessage builds an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
