// Package quizgen calls an external question-generation service over HTTP
// and satisfies quiz.Generator.
//
// The service contract is a single endpoint:
//
//	POST {baseURL}/v1/questions
//	{"topic": "winter traditions", "count": 5}
//
// answering with {"questions": [{"type": "single", "prompt": "...",
// "options": [...], "correctAnswer": "..."}]}.
package quizgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/pkg/httpretry"
)

// Config holds the generator endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the question generation API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpretry.Doer
}

// NewClient creates a new generator client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpretry.New(&http.Client{Timeout: timeout}, 2),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.Doer) {
	c.httpClient = client
}

type generateRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type generatedQuestion struct {
	Type          string   `json:"type"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type generateResponse struct {
	Questions []generatedQuestion `json:"questions"`
}

// Generate asks the service for n questions about topic. The quiz service
// validates and numbers the result.
func (c *Client) Generate(ctx context.Context, topic string, n int) ([]domain.Question, error) {
	body, err := json.Marshal(generateRequest{Topic: topic, Count: n})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/questions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("generator error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	qs := make([]domain.Question, 0, len(out.Questions))
	for _, g := range out.Questions {
		qs = append(qs, domain.Question{
			Type:          domain.QuestionType(g.Type),
			Prompt:        g.Prompt,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
		})
	}
	return qs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
