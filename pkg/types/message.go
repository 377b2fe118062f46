package types

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem is instruction content supplied by the application.
	RoleUser      MessageRole = "user"      // RoleUser is content authored by the human user.
	RoleAssistant MessageRole = "assistant" // RoleAssistant is content produced by the model.
)

// Message represents a single chat message exchanged with an LLM provider.
type Message struct {
	// Metadata holds optional additional information about the message.
	Metadata map[string]interface{}

	// Content is the text content of the message.
	Content string

	// Role indicates who authored the message.
	Role MessageRole
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return &Message{
		Role:     RoleSystem,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return &Message{
		Role:     RoleUser,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return &Message{
		Role:     RoleAssistant,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// IsUser returns true if the message was authored by the user.
func (m *Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant returns true if the message was authored by the model.
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// ModelInfo describes the LLM model behind a provider.
type ModelInfo struct {
	// Metadata holds provider-specific details such as a non-default base URL.
	Metadata map[string]interface{}

	// Provider is the provider implementation name (e.g. "openai").
	Provider string

	// Name is the model identifier (e.g. "gpt-4o").
	Name string

	// MaxTokens is the model's context window size, when known.
	MaxTokens int

	// SupportsStreaming indicates whether the provider can stream responses.
	SupportsStreaming bool
}
