package llm

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when GEMINI_MODEL is not set.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient sends completions to the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if req.DataSource != nil {
		return "", generationError(c.Name(), ErrRetrievalUnsupported)
	}
	messages, err := NormalizeMessages(req.Messages)
	if err != nil {
		return "", generationError(c.Name(), err)
	}
	system, history, last, err := splitConversation(messages)
	if err != nil {
		return "", generationError(c.Name(), err)
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(last, genai.RoleUser))

	slog.Debug("llm: sending Gemini request", "model", c.model, "contents", len(contents))
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		slog.Error("llm: Gemini call failed", "model", c.model, "error", err)
		return "", generationError(c.Name(), err)
	}
	return checkCompletion(c.Name(), resp.Text())
}

func (c *GeminiClient) Name() string {
	return fmt.Sprintf("gemini:%s", c.model)
}

func (c *GeminiClient) Close() error {
	return nil
}
