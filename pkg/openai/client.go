package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vrapolinario/AIforITOps/pkg/config"
)

const apiVersion = "2023-03-15-preview"

// Client is a minimal chat-completions client for an Azure-hosted OpenAI
// deployment. It only implements the single-turn completion the chatbot
// endpoint needs.
type Client struct {
	cfg  config.OpenAIConfig
	http *http.Client
}

func NewClient(cfg config.OpenAIConfig) (*Client, error) {
	if !cfg.Configured() {
		return nil, errors.New("openai endpoint, api key and deployment are required")
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a system instruction plus one user turn and returns the
// assistant's reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	payload := completionRequest{
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: c.cfg.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var decoded completionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

// NotConfigured stands in for Client when the upstream is not provisioned.
// Every completion fails, which the chat layer turns into its fallback
// answer, so a storefront without OpenAI credentials still boots.
type NotConfigured struct{}

func (NotConfigured) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("completion upstream not configured")
}
