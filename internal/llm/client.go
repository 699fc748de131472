package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/livetemplate/mailcraft/internal/config"
)

// maxResponseSize caps the service reply.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Request is the body posted to the generation endpoint.
type Request struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

// Response is the part of the service reply the client reads.
type Response struct {
	Model    string  `json:"model,omitempty"`
	Response *string `json:"response"`
	Done     bool    `json:"done,omitempty"`
}

// Client calls a non-streaming JSON generation endpoint. It is safe for
// concurrent use.
type Client struct {
	name        string
	endpoint    string
	model       string
	apiKey      string
	disabled    bool
	client      *http.Client
	retryConfig RetryConfig
	breaker     *Breaker
}

// New creates a client from configuration.
func New(name string, cfg config.LLMConfig) *Client {
	return &Client{
		name:     name,
		endpoint: cfg.GetEndpoint(),
		model:    cfg.GetModel(),
		apiKey:   cfg.GetAPIKey(),
		disabled: cfg.Disabled,
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		retryConfig: RetryConfig{
			MaxRetries: cfg.GetRetryMaxRetries(),
			BaseDelay:  cfg.GetRetryBaseDelay(),
			MaxDelay:   cfg.GetRetryMaxDelay(),
			Multiplier: 2.0,
			EnableLog:  true,
		},
		breaker: NewBreaker(name, BreakerConfig{
			Trips:    cfg.GetBreakerTrips(),
			Cooldown: cfg.GetBreakerCooldown(),
		}),
	}
}

// Name returns the client identifier used in logs and errors.
func (c *Client) Name() string {
	return c.name
}

// Model returns the model requested from the service.
func (c *Client) Model() string {
	return c.model
}

// Breaker exposes the client's view of service health.
func (c *Client) Breaker() *Breaker {
	return c.breaker
}

// Generate sends prompt to the service and returns the raw "response" text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.disabled {
		return "", ErrDisabled
	}
	return c.breaker.Call(ctx, func(ctx context.Context) (string, error) {
		return WithRetry(ctx, c.name, c.retryConfig, c.doGenerate(prompt))
	})
}

func (c *Client) doGenerate(prompt string) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		body, err := json.Marshal(Request{
			Model:  c.model,
			Prompt: prompt,
			Stream: false,
			Format: "json",
		})
		if err != nil {
			return "", &ServiceError{Service: c.name, Operation: "encode request", Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return "", &ServiceError{Service: c.name, Operation: "create request", Err: err}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return "", newServiceError(c.name, "request", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return "", &HTTPError{
				Service:    c.name,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       strings.TrimSpace(string(snippet)),
			}
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return "", newServiceError(c.name, "read response", err)
		}

		var out Response
		if err := json.Unmarshal(data, &out); err != nil {
			return "", &ReplyError{Service: c.name, Reason: "reply is not JSON", Err: err}
		}
		if out.Response == nil {
			return "", &ReplyError{Service: c.name, Reason: `reply has no "response" field`}
		}
		return *out.Response, nil
	}
}
