// Package ai talks to the Gemini generative language REST API.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"

	apiKeyHeader = "x-goog-api-key"
)

var (
	ErrConfigurationMissing = errors.New("generative service credential is not configured")
	ErrGenerationFailed     = errors.New("generation failed")
)

type (
	Config struct {
		APIKey     string
		BaseURL    string
		Model      string
		Timeout    time.Duration
		MaxRetries uint64
	}

	Entry struct {
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
	}

	Client struct {
		http       *resty.Client
		model      string
		maxRetries uint64
		retryWait  time.Duration

		log *slog.Logger
	}

	statusError struct {
		code int
		body string
	}
)

func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrConfigurationMissing
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	c := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader(apiKeyHeader, cfg.APIKey).
		SetTimeout(cfg.Timeout)

	return &Client{
		http:       c,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryWait:  200 * time.Millisecond,
		log:        log,
	}, nil
}

// GenerateCreativeEntry asks the model to invent a new pet name together with its meaning.
func (c *Client) GenerateCreativeEntry(ctx context.Context) (Entry, error) {
	start := time.Now()
	temperature := 1.0
	req := generateRequest{
		Contents: []content{userContent(creativeEntryPrompt)},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   entrySchema(),
			Temperature:      &temperature,
		},
	}

	var entry Entry
	operation := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(&req).
			Post(c.endpoint("generateContent"))
		if err != nil {
			return fmt.Errorf("gemini request: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			sErr := &statusError{code: resp.StatusCode(), body: resp.String()}
			if !sErr.retryable() {
				return backoff.Permanent(sErr)
			}
			return sErr
		}

		var gr generateResponse
		if err := json.Unmarshal(resp.Body(), &gr); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		text := gr.text()
		if strings.TrimSpace(text) == "" {
			return errors.New("empty response")
		}
		if err := json.Unmarshal([]byte(cleanJSON(text)), &entry); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}
		entry.Word, entry.Meaning = strings.TrimSpace(entry.Word), strings.TrimSpace(entry.Meaning)
		if entry.Word == "" || entry.Meaning == "" {
			return errors.New("response misses required fields")
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, c.maxRetries), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		c.log.DebugContext(ctx, "retrying creative entry generation", "error", err, "wait", wait)
	})
	observe(opGenerate, start, err)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return entry, nil
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("/models/%s:%s", c.model, method)
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
