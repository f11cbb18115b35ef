package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGenerationTimeout = 45 * time.Second

// Client is the generation gateway: a client for an OpenAI-compatible chat
// completions API.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	client  *http.Client
}

// NewClient creates a new generation client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Timeout: defaultGenerationTimeout,
		client:  &http.Client{},
	}
}

// ChatMessage represents a single message in a chat completions request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
}

// ChatChoiceMessage represents the message in a chat choice.
type ChatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int               `json:"index"`
	Message      ChatChoiceMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
}

const systemPrompt = "You are Edify AI, an educational assistant for teachers and school staff. " +
	"Answer the question using only the information from the provided context. " +
	"If the context doesn't contain enough information to answer, say so plainly. " +
	"Be specific and cite the source documents when possible."

// Generate asks the model to answer a query given assembled context and
// conversation history. The request is bounded by the client timeout; a
// content-policy refusal is returned as normal text, not an error.
func (c *Client) Generate(ctx context.Context, userQuery, assembledContext string, history []Message, role string) (GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	prompt := systemPrompt
	if role != "" {
		prompt += fmt.Sprintf(" The asker's role is %q; match the depth of the answer to that role.", role)
	}

	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: prompt})
	for _, m := range history {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		messages = append(messages, ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf("%s\n\n--- Context ---\n%s\n--- End Context ---", userQuery, assembledContext),
	})

	payload := ChatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: 0.7,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return GenerationResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return GenerationResult{}, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return GenerationResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return GenerationResult{}, fmt.Errorf("no choices returned")
	}

	model := chatResp.Model
	if model == "" {
		model = c.Model
	}

	text, reasoning := splitReasoning(chatResp.Choices[0].Message.Content)
	return GenerationResult{Text: text, Reasoning: reasoning, Model: model}, nil
}

// splitReasoning separates <think>-style reasoning blocks from the answer
// text when the model emits them. Models without reasoning output pass
// through unchanged.
func splitReasoning(content string) (text, reasoning string) {
	start := strings.Index(content, "<think>")
	end := strings.Index(content, "</think>")
	if start < 0 || end < 0 || end < start {
		return strings.TrimSpace(content), ""
	}
	reasoning = strings.TrimSpace(content[start+len("<think>") : end])
	text = strings.TrimSpace(content[:start] + content[end+len("</think>"):])
	return text, reasoning
}
