package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/complyline/ingredient-audit/internal/common"
)

// HTTPClassifier calls an OpenAI-compatible chat/completions endpoint and
// treats it as an opaque remote judge. Unavailability, non-2xx responses
// and unparsable output all surface as ErrClassificationUnavailable so the
// caller can tell "the analysis service is down" apart from extraction
// failures.
type HTTPClassifier struct {
	cfg     common.ClassifierConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[Result]
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewHTTPClassifier(cfg common.ClassifierConfig, logger *slog.Logger) *HTTPClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}

	settings := gobreaker.Settings{
		Name:    "classifier",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("classifier.breaker_state_change", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &HTTPClassifier{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[Result](settings),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		logger:  logger,
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, req Request) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	res, err := c.breaker.Execute(func() (Result, error) {
		return c.classify(ctx, req)
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Result{}, common.NewAppError("CLASSIFIER_CIRCUIT_OPEN",
				"classifier temporarily disabled after repeated failures", common.ErrClassificationUnavailable)
		}
		return Result{}, err
	}
	return res, nil
}

func (c *HTTPClassifier) classify(ctx context.Context, req Request) (Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("classify.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"product", req.ProductName,
		"ingredients", len(req.Ingredients),
	)

	schema := BuildVerdictJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": buildSystemPrompt()},
			{"role": "user", "content": buildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("classify.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Result{}, common.NewAppError("CLASSIFIER_UNREACHABLE", "classifier request failed",
			errors.Join(common.ErrClassificationUnavailable, err))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("classify.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return Result{}, common.NewAppError("CLASSIFIER_BAD_RESPONSE", "classifier response could not be decoded",
			errors.Join(common.ErrClassificationUnavailable, err))
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("classify.no_choices", "req_id", rid, "raw_bytes", len(raw))
		return Result{}, common.NewAppError("CLASSIFIER_BAD_RESPONSE", "classifier returned no choices",
			common.ErrClassificationUnavailable)
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := ValidateJSONAgainstSchema(schema, content); err != nil {
		c.logger.Error("classify.schema_validation_failed", "req_id", rid, "error", err)
		return Result{}, common.NewAppError("CLASSIFIER_BAD_RESPONSE", "classifier output failed schema validation",
			errors.Join(common.ErrClassificationUnavailable, err))
	}

	var out Result
	if err := json.Unmarshal(content, &out); err != nil {
		return Result{}, common.NewAppError("CLASSIFIER_BAD_RESPONSE", "classifier output could not be unmarshaled",
			errors.Join(common.ErrClassificationUnavailable, err))
	}

	c.logger.Info("classify.ok",
		"req_id", rid,
		"product", req.ProductName,
		"submitted", len(req.Ingredients),
		"returned", len(out.Ingredients),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (c *HTTPClassifier) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("classify.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("classifier status %d: %s", resp.StatusCode, truncate(string(raw), 512))
	}
	return raw, nil
}

func buildSystemPrompt() string {
	return strings.Join([]string{
		"You are an ingredient compliance classifier.",
		"For every ingredient in the list, return a verdict object in the same order.",
		"Judge each ingredient independently; do not merge, skip, or reorder entries.",
		"Return ONLY JSON that matches the JSON Schema provided.",
		"Never output null. If a field is unknown, omit it.",
	}, " ")
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Product: ")
	b.WriteString(req.ProductName)
	b.WriteString("\nIngredients:\n")
	for i, ing := range req.Ingredients {
		fmt.Fprintf(&b, "%d. %s\n", i+1, ing)
	}
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
