package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opslane/riskplane/services/providers"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// OpenAIAdapter implements the Provider interface for any
// OpenAI-compatible chat completions endpoint.
type OpenAIAdapter struct {
	config     providers.ProviderConfig
	model      string
	httpClient *http.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter
func NewOpenAIAdapter(config providers.ProviderConfig, model string) *OpenAIAdapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if model == "" {
		model = defaultModel
	}

	return &OpenAIAdapter{
		config: config,
		model:  model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Generate performs a single chat completion request. Timeout handling and
// retries belong to the caller; this adapter only classifies failures as
// retryable or not.
func (a *OpenAIAdapter) Generate(ctx context.Context, req *providers.GenerationRequest) (*providers.GenerationResponse, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = a.model
	}

	openaiReq := a.buildChatRequest(model, req)

	reqBody, err := json.Marshal(openaiReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "MARSHAL_ERROR", "Failed to marshal request", 0, false, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.config.BaseURL+"/chat/completions", strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "REQUEST_ERROR", "Failed to create request", 0, false, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}
	for k, v := range a.config.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, providers.NewProviderError(a.Name(), "TIMEOUT", "Request deadline exceeded", 0, true, err)
		}
		return nil, providers.NewProviderError(a.Name(), "HTTP_ERROR", "HTTP request failed", 0, true, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "READ_ERROR", "Failed to read response", httpResp.StatusCode, true, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.handleErrorResponse(httpResp.StatusCode, respBody)
	}

	var openaiResp chatResponse
	if err := json.Unmarshal(respBody, &openaiResp); err != nil {
		return nil, providers.NewProviderError(a.Name(), "UNMARSHAL_ERROR", "Failed to unmarshal response", httpResp.StatusCode, false, err)
	}

	if len(openaiResp.Choices) == 0 {
		return nil, providers.NewProviderError(a.Name(), "EMPTY_RESPONSE", "No choices in response", httpResp.StatusCode, true, nil)
	}

	return &providers.GenerationResponse{
		Text:     openaiResp.Choices[0].Message.Content,
		Model:    openaiResp.Model,
		Provider: a.Name(),
		Latency:  time.Since(startTime),
	}, nil
}

// IsAvailable checks if the provider is currently available
func (a *OpenAIAdapter) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", a.config.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// buildChatRequest converts the unified request to OpenAI format
func (a *OpenAIAdapter) buildChatRequest(model string, req *providers.GenerationRequest) *chatRequest {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	openaiReq := &chatRequest{
		Model:    model,
		Messages: messages,
	}

	if req.MaxTokens > 0 {
		openaiReq.MaxTokens = &req.MaxTokens
	}
	if req.Temperature > 0 {
		openaiReq.Temperature = &req.Temperature
	}

	return openaiReq
}

// handleErrorResponse handles OpenAI error responses
func (a *OpenAIAdapter) handleErrorResponse(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return providers.NewProviderError(a.Name(), "UNKNOWN_ERROR", string(body), statusCode, statusCode >= 500, err)
	}

	retryable := statusCode >= 500 || statusCode == 429

	return providers.NewProviderError(
		a.Name(),
		errResp.Error.Type,
		errResp.Error.Message,
		statusCode,
		retryable,
		errors.New(errResp.Error.Message),
	)
}

// OpenAI-specific request/response types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
