package llm

import (
	"context"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/docinspector/internal/gcp"
)

// VertexBackend sends completions to a Gemini model on Vertex AI.
type VertexBackend struct {
	vertex *gcp.VertexClient
}

// NewVertexBackend wraps an existing Vertex AI client.
func NewVertexBackend(vertex *gcp.VertexClient) *VertexBackend {
	return &VertexBackend{vertex: vertex}
}

// Complete maps the conversation onto a chat session: system messages become
// the system instruction, earlier turns the session history.
func (b *VertexBackend) Complete(ctx context.Context, req Request) (string, error) {
	if req.DataSource != nil {
		return "", generationError(b.Name(), ErrRetrievalUnsupported)
	}
	messages, err := NormalizeMessages(req.Messages)
	if err != nil {
		return "", generationError(b.Name(), err)
	}
	system, history, last, err := splitConversation(messages)
	if err != nil {
		return "", generationError(b.Name(), err)
	}

	model := b.vertex.Model(system)
	if req.Temperature != nil {
		model.SetTemperature(float32(*req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	cs := model.StartChat()
	for _, m := range history {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	slog.Debug("llm: sending Vertex AI request", "model", b.vertex.ModelName(), "history", len(cs.History))
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		slog.Error("llm: Vertex AI call failed", "model", b.vertex.ModelName(), "error", err)
		return "", generationError(b.Name(), err)
	}
	return checkCompletion(b.Name(), vertexText(resp))
}

// vertexText concatenates the text parts of the first candidate.
func vertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func (b *VertexBackend) Name() string {
	return "vertex"
}

func (b *VertexBackend) Close() error {
	return b.vertex.Close()
}
