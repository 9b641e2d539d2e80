package litellm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dentara/backend/internal/domain/entities"
	"github.com/dentara/backend/internal/domain/providers"
	"github.com/dentara/backend/pkg/config"
)

// Client implements the glossary metadata suggester against a
// LiteLLM-compatible chat-completions proxy.
type Client struct {
	proxyURL   string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new LiteLLM client.
func NewClient(cfg *config.LiteLLMConfig) (*Client, error) {
	if cfg == nil || !cfg.Configured() {
		return nil, errors.New("litellm proxy url and api key are required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		proxyURL: strings.TrimSuffix(cfg.ProxyURL, "/"),
		apiKey:   cfg.APIKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type suggestionEnvelope struct {
	Suggestions []entities.MetadataSuggestion `json:"suggestions"`
}

// SuggestMetadata asks the proxy for metadata suggestions for one batch of
// terms. Suggestions come back unvalidated; the caller decides what to keep.
func (c *Client) SuggestMetadata(ctx context.Context, batch []entities.TermEnhancementInput, existingTerms []string) ([]entities.MetadataSuggestion, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordRequestMetric(ctx, c.model, 0, 0, err)
			return nil, err
		}
		recordRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	userPrompt, err := buildSuggestionPrompt(batch, existingTerms)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: suggestionSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
		Stream:      false,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRequestMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("%w: request failed with status %d", providers.ErrSuggesterUnauthorized, resp.StatusCode)
		}
		return nil, fmt.Errorf("litellm request failed with status %d", resp.StatusCode)
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), errors.New("missing completion content"))
		return nil, errors.New("litellm response missing completion content")
	}

	cleaned := stripCodeFences(envelope.Choices[0].Message.Content)

	var parsed suggestionEnvelope
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("failed to parse litellm response: %w", err)
	}

	recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return parsed.Suggestions, nil
}

// stripCodeFences removes a surrounding markdown code block, which some
// models wrap JSON answers in despite the prompt.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}
	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens chan struct{}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type clientMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var (
	litellmMetricsOnce  sync.Once
	litellmMetricsReady bool
	litellmMetrics      clientMetrics
)

func ensureMetrics() {
	litellmMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/dentara/backend/litellm")

		requestCount, err := meter.Int64Counter(
			"ai.litellm.request.count",
			metric.WithDescription("Number of LiteLLM requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"ai.litellm.request.duration",
			metric.WithDescription("LiteLLM request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"ai.litellm.request.errors",
			metric.WithDescription("Number of LiteLLM request errors"),
		)
		if err != nil {
			return
		}
		rateLimitWait, err := meter.Float64Histogram(
			"ai.litellm.rate_limit.wait",
			metric.WithDescription("Time spent waiting for the LiteLLM rate limiter in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}

		litellmMetrics = clientMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
			rateLimitWait:   rateLimitWait,
		}
		litellmMetricsReady = true
	})
}

func recordRequestMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureMetrics()
	if !litellmMetricsReady {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "litellm"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	litellmMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	litellmMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		litellmMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureMetrics()
	if !litellmMetricsReady {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "litellm"),
		attribute.String("ai.model", model),
	}
	litellmMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
