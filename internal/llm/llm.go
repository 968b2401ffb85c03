// Package llm is the single entry point to the text-completion service. Every
// request is issued exactly once: there are no retries at this layer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrGeneration is returned when the completion service is unreachable,
	// rejects the request, or returns an empty completion.
	ErrGeneration = errors.New("generation failed")
	// ErrRetrievalUnsupported is returned by backends that cannot bind a
	// search data source to a completion request.
	ErrRetrievalUnsupported = errors.New("retrieval data source not supported by backend")
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request.
type Request struct {
	Messages []Message
	// Temperature is left to the service default when nil.
	Temperature *float64
	// MaxTokens is left to the service default when zero.
	MaxTokens int
	// DataSource binds a vector search index to the request when set.
	DataSource *SearchDataSource
}

// Client issues completion requests.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
	Close() error
}

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// System and User build the two-message request used by every single-shot
// analysis call.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// NormalizeMessages lower-cases roles and rejects an empty message list.
func NormalizeMessages(messages []Message) ([]Message, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages provided")
	}
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[i] = Message{Role: strings.ToLower(m.Role), Content: m.Content}
	}
	return out, nil
}

// generationError wraps a backend failure so callers can match ErrGeneration
// while keeping the underlying cause.
func generationError(backend string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrGeneration, backend, err)
}

// checkCompletion rejects whitespace-only completions.
func checkCompletion(backend, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s: empty completion", ErrGeneration, backend)
	}
	return text, nil
}

// splitConversation separates the leading system instructions, the prior
// turns and the final user turn. Backends without a native system role use
// this to build their own request shape.
func splitConversation(messages []Message) (system string, history []Message, last string, err error) {
	var systemParts []string
	rest := messages
	for len(rest) > 0 && rest[0].Role == RoleSystem {
		systemParts = append(systemParts, rest[0].Content)
		rest = rest[1:]
	}
	if len(rest) == 0 || rest[len(rest)-1].Role != RoleUser {
		return "", nil, "", errors.New("conversation must end with a user message")
	}
	return strings.Join(systemParts, "\n\n"), rest[:len(rest)-1], rest[len(rest)-1].Content, nil
}
