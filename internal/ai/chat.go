// Package ai talks to an OpenAI-compatible chat completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/config"
)

// ErrNoAPIKey is returned when the client has no credentials.
var ErrNoAPIKey = eris.New("no text-generation api key")

// Completer returns the model's reply to a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type ChatClient struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

func NewChatClient(cfg config.Config) *ChatClient {
	return &ChatClient{
		apiKey:     cfg.AI.APIKey,
		model:      cfg.AI.Model,
		baseURL:    strings.TrimRight(cfg.AI.BaseURL, "/"),
		maxTokens:  4096,
		httpClient: &http.Client{Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second},
	}
}

// Enabled reports whether the client has an API key.
func (c *ChatClient) Enabled() bool { return c != nil && c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoAPIKey
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", eris.Wrap(err, "marshal chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", eris.Wrap(err, "build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "chat request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", eris.Wrap(err, "read chat response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("chat api status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", eris.Wrap(err, "decode chat response")
	}
	if cr.Error != nil {
		return "", eris.Errorf("chat api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", eris.New("chat api returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
