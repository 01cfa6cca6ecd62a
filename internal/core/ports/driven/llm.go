package driven

import "context"

// LLMService provides text generation through a hosted model provider.
//
// Implementations may include:
//   - Gemini (Google Generative Language API)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a text completion from a prompt. The context
	// deadline bounds the call; implementations must honour
	// cancellation.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the provider is reachable with a lightweight
	// request. Used at startup to surface misconfiguration early.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// TopP is the nucleus-sampling parameter.
	TopP float64
}
