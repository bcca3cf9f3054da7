package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/modules/dailypaper/candidate"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/envutil"
	"github.com/hamzzaahhhhh-spec/neet-ai-app/internal/platform/logger"
)

const (
	generatePath = "/generate-question"
	healthPath   = "/health"

	defaultTimeout = 60 * time.Second
	healthTimeout  = 10 * time.Second
	maxErrorBody   = 2048
	// MaxResponseBody caps a reply; one candidate question is a few KiB.
	MaxResponseBody = 1 << 20
)

var ErrResponseTooLarge = errors.New("ai service response too large")

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff time.Duration
}

func ConfigFromEnv(log *logger.Logger) Config {
	return Config{
		BaseURL:    envutil.String("AI_SERVICE_URL", "", log),
		APIKey:     envutil.String("AI_SERVICE_API_KEY", "", nil),
		Timeout:    envutil.Seconds("AI_SERVICE_TIMEOUT_SECONDS", defaultTimeout, log),
		MaxRetries: envutil.Int("AI_SERVICE_MAX_RETRIES", 2, log),
		Backoff:    time.Second,
	}
}

// HTTPError is a non-2xx reply from the AI service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("ai service http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client is the HTTP candidate source.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing AI_SERVICE_URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("service", "AIServiceClient"),
	}, nil
}

// Generate posts one slot request. Malformed replies come back as
// *candidate.DecodeError; transport failures and non-2xx replies are errors.
func (c *Client) Generate(ctx context.Context, req dailypaper.Request) (*candidate.Response, error) {
	if req.ExcludeHashes == nil {
		req.ExcludeHashes = []string{}
	}
	raw, err := c.do(ctx, http.MethodPost, generatePath, req)
	if err != nil {
		return nil, err
	}
	resp, err := candidate.Decode(raw)
	if err != nil {
		return nil, err
	}
	if resp.Source == "" {
		resp.Source = "ai-service"
	}
	return resp, nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	_, err := c.doOnce(ctx, http.MethodGet, healthPath, nil)
	return err
}

// Warmup probes the service and only logs the outcome.
func (c *Client) Warmup(ctx context.Context) {
	if err := c.Health(ctx); err != nil {
		c.log.Warn("AI service warmup failed", "url", c.cfg.BaseURL, "error", err)
		return
	}
	c.log.Info("AI service warmup ok", "url", c.cfg.BaseURL)
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	backoff := c.cfg.Backoff
	for attempt := 0; ; attempt++ {
		raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			return raw, nil
		}
		var httpErr *HTTPError
		if attempt >= c.cfg.MaxRetries || !errors.As(err, &httpErr) || !httpErr.retryable() {
			return nil, err
		}
		c.log.Warn("AI service call failed, retrying", "path", path, "attempt", attempt+1, "status", httpErr.StatusCode)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody+1))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if len(raw) > MaxResponseBody {
		return nil, fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, MaxResponseBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
