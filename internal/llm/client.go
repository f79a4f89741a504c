package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Request describes one structured-generation call: a system prompt, the
// document (or other user content) to analyze, and the name of the schema
// the response must satisfy.
type Request struct {
	System      string
	Document    string
	SchemaName  string
	MaxTokens   int
	Temperature float32
}

// Generator produces schema-validated JSON from a prompt plus document.
// Implementations validate the raw model output against the named schema
// before returning it, so callers can decode without re-checking shape.
type Generator interface {
	Generate(ctx context.Context, req Request) (json.RawMessage, error)
}

// Config holds configuration for the OpenAI-compatible client.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Client is a Generator backed by an OpenAI-compatible chat completions
// endpoint.
type Client struct {
	client   *resty.Client
	model    string
	endpoint string
	schemas  *SchemaSet
}

// NewClient creates a new structured-generation client.
func NewClient(cfg *Config, schemas *SchemaSet) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	endpoint := baseURL + "/chat/completions"

	return &Client{
		client:   client,
		model:    cfg.Model,
		endpoint: endpoint,
		schemas:  schemas,
	}
}

// GetModel returns the model name being used.
func (c *Client) GetModel() string {
	return c.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate performs one structured-generation call and validates the output
// against the request's schema. Malformed or schema-violating output returns
// an error; callers decide whether to retry (see WithRetry).
func (c *Client) Generate(ctx context.Context, req Request) (json.RawMessage, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Document},
		},
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call LLM API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("LLM API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("LLM API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from LLM API (status: %d)", httpResp.StatusCode())
	}

	raw := ExtractJSON(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in LLM response")
	}

	if err := c.schemas.Validate(req.SchemaName, []byte(raw)); err != nil {
		return nil, err
	}

	return json.RawMessage(raw), nil
}

// ExtractJSON pulls the JSON object out of a model response, tolerating
// markdown fences and surrounding prose.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return content[start : end+1]
}
