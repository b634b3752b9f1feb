package providers

import (
	"context"
	"time"
)

// Provider represents a text-generation endpoint. The reasoning client owns
// retry and schema validation; a provider does a single request/response
// exchange and reports whether a failure is worth retrying.
type Provider interface {
	// Name returns the provider name (e.g., "openai")
	Name() string

	// Generate performs one completion request. The context carries the
	// per-attempt timeout; implementations must respect it.
	Generate(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error)

	// IsAvailable checks if the provider is currently reachable
	IsAvailable(ctx context.Context) bool
}

// GenerationRequest represents a single-turn structured prompt
type GenerationRequest struct {
	// Model identifier (e.g., "gpt-4o-mini")
	Model string `json:"model"`

	// System is the instruction framing the task and output schema
	System string `json:"system,omitempty"`

	// Prompt is the user-facing prompt text
	Prompt string `json:"prompt"`

	// MaxTokens limits the response length
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`
}

// GenerationResponse represents the raw text returned by the endpoint
type GenerationResponse struct {
	// Text is the raw model output, before any parsing or repair
	Text string `json:"text"`

	// Model used for the completion
	Model string `json:"model"`

	// Provider that handled the request
	Provider string `json:"provider"`

	// Latency of the request
	Latency time.Duration `json:"latency"`
}

// ProviderConfig holds common configuration for providers
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Timeout is the transport-level ceiling; the reasoning client imposes
	// a tighter per-attempt deadline via context
	Timeout time.Duration

	// Additional headers
	Headers map[string]string
}

// DefaultProviderConfig returns a sensible default configuration
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout: 30 * time.Second,
		Headers: make(map[string]string),
	}
}

// ProviderError represents an error from a provider
type ProviderError struct {
	// Provider that generated the error
	Provider string

	// Code is the error code
	Code string

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Retryable indicates if the request can be retried
	Retryable bool

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if provErr, ok := err.(*ProviderError); ok {
		return provErr.Retryable
	}
	return false
}
