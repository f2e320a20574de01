package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Completer is the language-model surface the extractor needs: one
// system+user completion call. Any OpenAI-compatible chat server satisfies
// it (vLLM, Ollama, LiteLLM proxies, OpenAI itself).
type Completer interface {
	// Complete returns the model's text response and its finish reason
	// ("stop", "length", ...).
	Complete(ctx context.Context, system, user string) (content, finishReason string, err error)

	// Model returns the model name.
	Model() string
}

// ClientConfig configures the completion client.
type ClientConfig struct {
	// Endpoint is the base URL of the chat server (e.g. "http://localhost:8000").
	// If empty, a no-op client is returned.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the model name sent in each request.
	Model string `json:"model" yaml:"model"`

	// APIKey is sent as a Bearer token when set.
	APIKey string `json:"api_key" yaml:"api_key"`

	// Temperature and TopP control sampling. Extraction wants near-greedy
	// output, so both default low.
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`

	// MaxTokens caps the response. 0 picks a ceiling from the model's
	// output window.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout per HTTP request. Default: 300s; a full chunk extraction is
	// a long generation.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Logger for debug/error messages. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *ClientConfig) defaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-pro"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
	if c.TopP == 0 {
		c.TopP = 0.9
	}
	if c.MaxTokens <= 0 {
		// ~100 output tokens per question; large-output models fit several
		// hundred questions per call.
		if strings.HasPrefix(c.Model, "gemini-") {
			c.MaxTokens = 65536
		} else {
			c.MaxTokens = 16384
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = 300 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// NewClient creates a Completer from config. An empty Endpoint returns a
// no-op client that produces an empty question list, so the rest of the
// pipeline runs without a model server.
func NewClient(cfg ClientConfig) Completer {
	cfg.defaults()
	if cfg.Endpoint == "" {
		return &noopCompleter{model: cfg.Model}
	}
	return &openaiCompleter{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// openaiCompleter calls the OpenAI /v1/chat/completions API.
type openaiCompleter struct {
	endpoint string
	cfg      ClientConfig
	client   *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *openaiCompleter) Complete(ctx context.Context, system, user string) (string, string, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		MaxTokens:   c.cfg.MaxTokens,
	}
	// GPT-family servers support JSON mode; others get JSON by prompting.
	if strings.Contains(strings.ToLower(c.cfg.Model), "gpt") {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("HTTP POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", "", fmt.Errorf("no choices returned from %s", url)
	}

	choice := result.Choices[0]
	return strings.TrimSpace(choice.Message.Content), choice.FinishReason, nil
}

func (c *openaiCompleter) Model() string { return c.cfg.Model }

// noopCompleter returns an empty extraction, useful for testing the
// pipeline without a model server.
type noopCompleter struct {
	model string
}

func (n *noopCompleter) Complete(_ context.Context, _, _ string) (string, string, error) {
	return `{"questions": []}`, "stop", nil
}

func (n *noopCompleter) Model() string { return n.model }
