package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	execDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "labrec",
		Subsystem: "piston",
		Name:      "execution_duration_seconds",
		Help:      "Duration of remote code executions",
		Buckets:   prometheus.DefBuckets,
	}, []string{"language"})

	execFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labrec",
		Subsystem: "piston",
		Name:      "execution_failures_total",
		Help:      "Number of remote executions that resulted in a transport error",
	}, []string{"language"})
)

// ErrUnavailable indicates the execution service could not be reached or
// answered with a non-success status. Callers surface it as-is; there is no
// retry policy.
var ErrUnavailable = errors.New("execution service unavailable")

// Executor runs source code on the remote execution service.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error)
}

// ExecuteRequest describes one execution of a single source file.
type ExecuteRequest struct {
	Language string
	Version  string
	Source   string
	Stdin    string
}

// ExecuteResult summarises the captured run output.
type ExecuteResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Config groups client configuration values.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to a Piston-compatible execute endpoint over HTTPS.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient constructs a client for the given base URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("piston base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger.With().Str("component", "piston_client").Logger(),
	}, nil
}

type executePayload struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []executeFile `json:"files"`
	Stdin    string        `json:"stdin,omitempty"`
}

type executeFile struct {
	Content string `json:"content"`
}

type executeResponse struct {
	Run struct {
		Stdout string `json:"stdout"`
		Stderr string `json:"stderr"`
		Code   int    `json:"code"`
	} `json:"run"`
	Message string `json:"message"`
}

// Execute submits the source to the remote service and returns the captured
// run output. Transport failures and non-2xx responses map to ErrUnavailable.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	payload := executePayload{
		Language: req.Language,
		Version:  req.Version,
		Files:    []executeFile{{Content: req.Source}},
		Stdin:    req.Stdin,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("encode execute request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("build execute request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		execFailures.WithLabelValues(req.Language).Inc()
		c.logger.Warn().Err(err).Str("language", req.Language).Msg("execution request failed")
		return ExecuteResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	execDuration.WithLabelValues(req.Language).Observe(duration.Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		execFailures.WithLabelValues(req.Language).Inc()
		return ExecuteResult{}, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		execFailures.WithLabelValues(req.Language).Inc()
		c.logger.Warn().Int("status", resp.StatusCode).Str("language", req.Language).Msg("execution service returned error status")
		return ExecuteResult{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded executeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		execFailures.WithLabelValues(req.Language).Inc()
		return ExecuteResult{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	return ExecuteResult{
		Stdout:   decoded.Run.Stdout,
		Stderr:   decoded.Run.Stderr,
		ExitCode: decoded.Run.Code,
		Duration: duration,
	}, nil
}
