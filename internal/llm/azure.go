package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/azure"
	"github.com/openai/openai-go/v2/option"
)

// DefaultAzureAPIVersion is the Azure OpenAI REST API version used when none is configured.
const DefaultAzureAPIVersion = "2024-12-01-preview"

// AzureConfig configures the Azure OpenAI backend.
type AzureConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	// HTTPTimeout is the transport timeout; zero keeps the client default.
	HTTPTimeout time.Duration
}

// AzureClient sends chat completions to an Azure OpenAI deployment.
type AzureClient struct {
	client     openai.Client
	deployment string
}

// NewAzureClient builds a retry-free Azure OpenAI client.
func NewAzureClient(cfg AzureConfig) (*AzureClient, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" || cfg.Deployment == "" {
		return nil, fmt.Errorf("azure openai endpoint, key and deployment must be set")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAzureAPIVersion
	}

	opts := []option.RequestOption{
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPTimeout > 0 {
		slog.Info("llm: configuring Azure OpenAI client with custom HTTP timeout", "timeout", cfg.HTTPTimeout)
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}

	slog.Info("llm: Azure OpenAI backend configured", "deployment", cfg.Deployment, "apiVersion", cfg.APIVersion)
	return &AzureClient{
		client:     openai.NewClient(opts...),
		deployment: cfg.Deployment,
	}, nil
}

// Complete issues one chat completion. A DataSource is attached as the
// top-level data_sources array of the request body.
func (c *AzureClient) Complete(ctx context.Context, req Request) (string, error) {
	messages, err := NormalizeMessages(req.Messages)
	if err != nil {
		return "", generationError(c.Name(), err)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.deployment),
		Messages: toOpenAIMessages(messages),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	var opts []option.RequestOption
	if req.DataSource != nil {
		opts = append(opts, option.WithJSONSet("data_sources", []any{req.DataSource.Payload()}))
	}

	slog.Debug("llm: sending chat completion request", "deployment", c.deployment, "messages", len(messages), "retrieval", req.DataSource != nil)
	resp, err := c.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		slog.Error("llm: chat completion failed", "deployment", c.deployment, "error", err)
		return "", generationError(c.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return "", generationError(c.Name(), fmt.Errorf("no choices returned"))
	}
	return checkCompletion(c.Name(), resp.Choices[0].Message.Content)
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func (c *AzureClient) Name() string {
	return "azure-openai"
}

func (c *AzureClient) Close() error {
	return nil
}
