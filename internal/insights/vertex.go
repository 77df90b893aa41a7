package insights

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/0unveiled/github-analyzer/internal/errors"
	"github.com/0unveiled/github-analyzer/internal/monitoring"
)

// VertexModel backs the assisted generator with a Vertex AI Gemini model
type VertexModel struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	metrics *monitoring.Metrics
}

// NewVertexModel connects to Vertex AI. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS when set, otherwise application default
// credentials.
func NewVertexModel(ctx context.Context, project, location, modelName string, metrics *monitoring.Metrics) (*VertexModel, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := genai.NewClient(ctx, project, location, opts...)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to create Vertex AI client", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.8)
	model.SetTopK(40)

	return &VertexModel{client: client, model: model, metrics: metrics}, nil
}

func (m *VertexModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	if m.metrics != nil {
		m.metrics.IncrementInsightCalls()
	}

	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type")
	}
	return string(text), nil
}

func (m *VertexModel) Close() error {
	return m.client.Close()
}
