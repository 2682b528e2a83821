package llm

import (
	"context"
)

// Provider defines the interface for interacting with LLM services.
type Provider interface {
	// GenerateText sends a prompt and returns the text response.
	// The name identifies the intent for request logging.
	GenerateText(ctx context.Context, name, prompt string) (string, error)

	// GenerateDocument sends a prompt alongside a source document and
	// returns the text response. Providers that support file upload send
	// the document out of band; others inline its text.
	GenerateDocument(ctx context.Context, name, prompt, docPath string) (string, error)

	// HealthCheck verifies that the provider is configured and reachable.
	HealthCheck(ctx context.Context) error
}
