package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"campus-agent/config"
	apperrors "campus-agent/errors"

	"go.uber.org/zap"
)

// Message is a single turn in the format the generation service expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint. It is the
// only component that performs slow external I/O; the timeout lives here so
// a stalled generation call cannot hold a request open indefinitely.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	// Non-streaming calls only; the client timeout is the cancellation
	// boundary for the whole generation call.
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.LLMRequestTimeout},
		logger:     logger,
	}
}

// Chat performs a chat completion call. temperature and maxTokens of zero
// fall back to the configured defaults.
func (c *Client) Chat(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	if temperature == 0 {
		temperature = c.cfg.LLMTemperature
	}
	if maxTokens == 0 {
		maxTokens = c.cfg.LLMMaxTokens
	}
	reqBody := completionRequest{
		Model:       c.cfg.LLMModel,
		Messages:    messages,
		Stream:      false,
		Temperature: &temperature,
		MaxTokens:   maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := c.cfg.LLMHost + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.LLMAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.LLMAPIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Generation service returned non-200 status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return "", apperrors.WrapErrorf(apperrors.ErrLLMCommunication, "status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, "failed to decode response")
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.WrapError(apperrors.ErrLLMCommunication, "response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// EstimateTokens is a rough per-message token estimate (about 4 characters
// per token) used for bookkeeping only.
func EstimateTokens(text string) int {
	return len(text) / 4
}
