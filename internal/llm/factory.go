package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lllllllleong/docinspector/internal/gcp"
)

// Provider names accepted in GEN_PROVIDER.
const (
	ProviderAzure  = "azure"
	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
)

// Config selects and configures a completion backend.
type Config struct {
	Provider string
	Azure    AzureConfig

	ProjectID      string
	VertexAIRegion string
	VertexModel    string

	GeminiAPIKey string
	GeminiModel  string
}

// LoadConfig reads the backend configuration from the environment.
func LoadConfig() Config {
	cfg := Config{
		Provider: strings.ToLower(strings.TrimSpace(gcp.GetEnv("GEN_PROVIDER", ProviderAzure))),
		Azure: AzureConfig{
			Endpoint:   gcp.GetEnv("AZURE_OPENAI_ENDPOINT", ""),
			APIKey:     gcp.GetEnv("AZURE_OPENAI_KEY", ""),
			Deployment: gcp.GetEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
			APIVersion: gcp.GetEnv("AZURE_OPENAI_API_VERSION", DefaultAzureAPIVersion),
		},
		ProjectID:      gcp.GetEnv("PROJECT_ID", ""),
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		VertexModel:    gcp.GetEnv("VERTEX_MODEL", gcp.DefaultVertexModel),
		GeminiAPIKey:   gcp.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:    gcp.GetEnv("GEMINI_MODEL", DefaultGeminiModel),
	}
	if timeoutStr := strings.TrimSpace(gcp.GetEnv("GEN_HTTP_TIMEOUT", "")); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			slog.Warn("llm: invalid GEN_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
		} else {
			cfg.Azure.HTTPTimeout = timeout
		}
	}
	return cfg
}

// LoadSearchDataSource reads the retrieval index binding from the environment.
func LoadSearchDataSource() SearchDataSource {
	return SearchDataSource{
		Endpoint:            gcp.GetEnv("AZURE_SEARCH_ENDPOINT", ""),
		IndexName:           gcp.GetEnv("AZURE_SEARCH_INDEX_NAME", ""),
		APIKey:              gcp.GetEnv("AZURE_SEARCH_KEY", ""),
		EmbeddingDeployment: gcp.GetEnv("AZURE_EMBEDDING_DEPLOYMENT_NAME", ""),
	}
}

// NewClient builds the backend named by cfg.Provider.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderAzure, "":
		return NewAzureClient(cfg.Azure)
	case ProviderVertex:
		vertex, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.VertexModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		slog.Info("llm: Vertex AI backend configured", "model", vertex.ModelName(), "region", cfg.VertexAIRegion)
		return NewVertexBackend(vertex), nil
	case ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		slog.Info("llm: Gemini backend configured", "model", cfg.GeminiModel)
		return client, nil
	}
	return nil, fmt.Errorf("unknown GEN_PROVIDER %q", cfg.Provider)
}
