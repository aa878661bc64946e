// Package llm is a small provider abstraction over hosted language models.
// quizladder uses it for one thing: writing a short study tip when a
// question in the bank does not carry its own.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a structured response for a prompt.
type Provider interface {
	// Generate sends req and returns the response. When req.Schema is set
	// the Content is JSON that has been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// DefaultMaxTokens bounds a response when the request leaves MaxTokens unset.
const DefaultMaxTokens = 256

// Request describes what to send to the model.
type Request struct {
	System   string
	Messages []Message

	// Schema asks the provider for JSON output in this shape, using its
	// native structured output mechanism. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]; zero leaves the provider default.
	Temperature float64
}

// maxTokens returns MaxTokens or DefaultMaxTokens.
func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// Message is one turn in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema is the JSON shape a response must have.
type Schema struct {
	// Name identifies the schema to the provider and keys the compile
	// cache, so it must be unique per Definition. Kebab-case.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model's output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
