package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/livyctl/livyctl/internal/version"
	"github.com/livyctl/livyctl/pkg/config"
)

const defaultTimeout = 30 * time.Second

// client is the Livy REST API client
type client struct {
	baseURL    *url.URL
	httpClient *http.Client
	attempts   uint
	retryDelay time.Duration
}

var _ Client = (*client)(nil)

// NewClient creates a new API client for the server at cfg.Root.APIURL
func NewClient(cfg *config.Config) (Client, error) {
	if cfg.Root.APIURL == "" {
		return nil, fmt.Errorf("livy server URL is not configured, use --api-url or 'livy config set root.api_url <url>'")
	}

	u, err := url.Parse(cfg.Root.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.Root.APIURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q in server URL", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in server URL %q", cfg.Root.APIURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	timeout := cfg.Root.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.Root.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // Opt-in through root.verify_ssl
	}

	return &client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		attempts:   max(cfg.Root.Retries, 1),
		retryDelay: 500 * time.Millisecond,
	}, nil
}

func (c *client) Host() string {
	return strings.ToLower(c.baseURL.Hostname())
}

func (c *client) String() string {
	return fmt.Sprintf("<Client for '%s'>", c.Host())
}

// request makes an HTTP request to the Livy server with retry logic.
// Connection failures and 5xx responses are retried; other failures are not.
func (c *client) request(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	reqURL := *c.baseURL
	reqURL.Path += path
	reqURL.RawQuery = query.Encode()

	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			slog.Error("Failed to marshal request body", "error", err, "path", path)
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	attempt := 0
	return retry.DoWithData(
		func() ([]byte, error) {
			attempt++

			slog.Debug("API request",
				"method", method,
				"url", reqURL.String(),
				"attempt", attempt,
			)

			var bodyReader io.Reader
			if jsonBody != nil {
				bodyReader = bytes.NewReader(jsonBody)
			}

			req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), bodyReader)
			if err != nil {
				return nil, retry.Unrecoverable(&RequestError{Reason: "invalid request", Err: err})
			}

			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", "livyctl/"+version.Version)
			if jsonBody != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			startTime := time.Now()
			resp, err := c.httpClient.Do(req)
			duration := time.Since(startTime)

			if err != nil {
				slog.Warn("HTTP request failed",
					"error", err,
					"method", method,
					"path", path,
					"duration", duration,
					"attempt", attempt,
				)
				if ctx.Err() != nil {
					return nil, retry.Unrecoverable(&RequestError{Reason: "request canceled", Err: err})
				}
				return nil, &RequestError{Reason: connectionReason(err), Err: err}
			}
			defer resp.Body.Close() //nolint:errcheck // Deferred close, error not actionable

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, &RequestError{Code: resp.StatusCode, Reason: "failed to read response", Err: err}
			}

			slog.Debug("API response",
				"statusCode", resp.StatusCode,
				"responseSize", len(respBody),
				"duration", duration,
				"method", method,
				"path", path,
			)

			if resp.StatusCode >= 200 && resp.StatusCode < 400 {
				return respBody, nil
			}

			reqErr := &RequestError{Code: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
			var errResp ErrorResponse
			if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Msg != "" {
				reqErr.Reason = errResp.Msg
			}

			slog.Debug("API error",
				"statusCode", resp.StatusCode,
				"reason", reqErr.Reason,
				"path", path,
				"method", method,
			)

			if resp.StatusCode >= 500 {
				return nil, reqErr
			}
			return nil, retry.Unrecoverable(reqErr)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
}

func connectionReason(err error) string {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "connection timeout"
	}
	return "connection error"
}

func decode[T any](body []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &RequestError{Code: http.StatusOK, Reason: "JSON decode error", Err: err}
	}
	return out, nil
}

// Check verifies the server is reachable
func (c *client) Check(ctx context.Context) error {
	_, err := c.request(ctx, http.MethodHead, "/batches", nil, nil)
	return err
}

// CreateBatch submits a new batch
func (c *client) CreateBatch(ctx context.Context, req CreateBatchRequest) (*Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Create batch", "file", req.File)
	body, err := c.request(ctx, http.MethodPost, "/batches", nil, req)
	if err != nil {
		return nil, err
	}

	batch, err := decode[Batch](body)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// DeleteBatch kills a batch
func (c *client) DeleteBatch(ctx context.Context, batchID int) error {
	if batchID < 0 {
		return fmt.Errorf("invalid batch id %d", batchID)
	}
	_, err := c.request(ctx, http.MethodDelete, "/batches/"+strconv.Itoa(batchID), nil, nil)
	return err
}

// GetBatch returns the batch summary
func (c *client) GetBatch(ctx context.Context, batchID int) (*Batch, error) {
	if batchID < 0 {
		return nil, fmt.Errorf("invalid batch id %d", batchID)
	}

	body, err := c.request(ctx, http.MethodGet, "/batches/"+strconv.Itoa(batchID), nil, nil)
	if err != nil {
		return nil, err
	}

	batch, err := decode[Batch](body)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchState returns the state of a batch
func (c *client) GetBatchState(ctx context.Context, batchID int) (string, error) {
	if batchID < 0 {
		return "", fmt.Errorf("invalid batch id %d", batchID)
	}

	body, err := c.request(ctx, http.MethodGet, "/batches/"+strconv.Itoa(batchID)+"/state", nil, nil)
	if err != nil {
		return "", err
	}

	resp, err := decode[batchStateResponse](body)
	if err != nil {
		return "", err
	}
	return resp.State, nil
}

// IsBatchFinished reports whether the batch left the starting and running states
func (c *client) IsBatchFinished(ctx context.Context, batchID int) (bool, error) {
	state, err := c.GetBatchState(ctx, batchID)
	if err != nil {
		return false, err
	}
	return !IsActiveState(state), nil
}

// GetBatchLog returns log lines of a batch
func (c *client) GetBatchLog(ctx context.Context, batchID, from, size int) ([]string, error) {
	if batchID < 0 {
		return nil, fmt.Errorf("invalid batch id %d", batchID)
	}

	query := url.Values{}
	if from >= 0 {
		query.Set("from", strconv.Itoa(from))
	}
	if size != 0 {
		query.Set("size", strconv.Itoa(size))
	}

	body, err := c.request(ctx, http.MethodGet, "/batches/"+strconv.Itoa(batchID)+"/log", query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := decode[batchLogResponse](body)
	if err != nil {
		return nil, err
	}
	if resp.Log == nil {
		return []string{}, nil
	}
	return resp.Log, nil
}
