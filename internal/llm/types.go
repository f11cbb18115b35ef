package llm

// Message represents a single message in a chat conversation.
// Conversation history travels in the request payload; the backend is
// stateless per request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationResult is the output of the generation gateway.
type GenerationResult struct {
	// Text is the answer text. Content-policy refusals arrive here as
	// normal text; the caller validates quality separately.
	Text string
	// Reasoning is optional model reasoning extracted from the response.
	Reasoning string
	// Model identifies the model that produced the answer.
	Model string
}
