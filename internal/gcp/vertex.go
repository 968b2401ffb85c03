package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// DefaultVertexModel is used when VERTEX_MODEL is not set.
const DefaultVertexModel = "gemini-1.5-pro"

// VertexClient wraps the Vertex AI client and hands out generative models
// configured per request.
type VertexClient struct {
	baseClient *genai.Client
	modelName  string
}

// NewVertexClient creates a new Vertex AI client for the given project and region.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultVertexModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexClient{
		baseClient: baseClient,
		modelName:  modelName,
	}, nil
}

// Model returns a fresh generative model with the given system instruction
// and relaxed safety filters.
func (c *VertexClient) Model(systemInstruction string) *genai.GenerativeModel {
	model := c.baseClient.GenerativeModel(c.modelName)
	if systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}
	return model
}

// ModelName reports the configured model name.
func (c *VertexClient) ModelName() string {
	return c.modelName
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
