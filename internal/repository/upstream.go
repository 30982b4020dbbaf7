package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

const (
	maxErrorBody = 512
	maxTextBody  = 64 << 10
)

// HTTPDoer describes the HTTP client used to reach the convocation service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// UpstreamObserver records the latency of calls to the convocation service.
type UpstreamObserver interface {
	ObserveUpstreamRequest(operation, status string, duration time.Duration)
}

// UpstreamClient issues requests against the convocation service base URL.
type UpstreamClient struct {
	baseURL string
	client  HTTPDoer
	metrics UpstreamObserver
	logger  *zap.Logger
}

// NewUpstreamClient constructs a client. A nil client falls back to
// http.DefaultClient.
func NewUpstreamClient(baseURL string, client HTTPDoer, metrics UpstreamObserver, logger *zap.Logger) *UpstreamClient {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpstreamClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
		metrics: metrics,
		logger:  logger,
	}
}

type upstreamCall struct {
	operation   string
	method      string
	path        string
	body        io.Reader
	contentType string
	timeout     time.Duration
}

// send performs the call and returns a 2xx response whose body releases the
// call deadline when closed.
func (c *UpstreamClient) send(ctx context.Context, call upstreamCall) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if call.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, call.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, call.method, c.baseURL+call.path, call.body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build %s request: %w", call.operation, err)
	}
	if call.contentType != "" {
		req.Header.Set("Content-Type", call.contentType)
	}
	req.Header.Set("Accept", "application/json, */*")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		status := "error"
		if isTimeout(ctx, err) {
			status = "timeout"
		}
		c.observe(call.operation, status, time.Since(start))
		c.logger.Warn("convocation service call failed",
			zap.String("operation", call.operation),
			zap.String("path", call.path),
			zap.Error(err))
		return nil, transportError(ctx, call.operation, err)
	}
	c.observe(call.operation, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer cancel()
		defer resp.Body.Close()
		appErr := statusError(call.operation, resp)
		c.logger.Warn("convocation service rejected call",
			zap.String("operation", call.operation),
			zap.String("path", call.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", appErr.Message))
		return nil, appErr
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// sendJSON performs the call and decodes a JSON body into dest. A nil dest
// discards the body.
func (c *UpstreamClient) sendJSON(ctx context.Context, call upstreamCall, dest interface{}) error {
	resp, err := c.send(ctx, call)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if isTimeout(ctx, err) {
			return transportError(ctx, call.operation, err)
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			fmt.Sprintf("invalid %s response from convocation service", call.operation))
	}
	return nil
}

// sendText performs the call and returns the body as trimmed text. JSON
// string bodies are unquoted.
func (c *UpstreamClient) sendText(ctx context.Context, call upstreamCall) (string, error) {
	resp, err := c.send(ctx, call)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBody))
	if err != nil {
		return "", transportError(ctx, call.operation, err)
	}
	text := strings.TrimSpace(string(raw))
	var unquoted string
	if json.Unmarshal([]byte(text), &unquoted) == nil {
		return unquoted, nil
	}
	return text, nil
}

func jsonBody(v interface{}) (io.Reader, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(payload), nil
}

func (c *UpstreamClient) observe(operation, status string, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveUpstreamRequest(operation, status, duration)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func transportError(ctx context.Context, operation string, err error) *appErrors.Error {
	if isTimeout(ctx, err) {
		return appErrors.Wrap(err, appErrors.ErrUpstreamTimeout.Code, appErrors.ErrUpstreamTimeout.Status,
			fmt.Sprintf("%s timed out", operation))
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
		fmt.Sprintf("%s failed: convocation service unreachable", operation))
}

// statusError keeps short plain-text bodies as the message since the service
// reports business errors that way.
func statusError(operation string, resp *http.Response) *appErrors.Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
	message := fmt.Sprintf("%s failed: convocation service returned %d", operation, resp.StatusCode)
	if text := upstreamMessage(raw); text != "" {
		message = fmt.Sprintf("%s: %s", message, text)
	}
	return appErrors.Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode),
		appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
}

func upstreamMessage(raw []byte) string {
	if len(raw) == 0 || len(raw) > maxErrorBody || !utf8.Valid(raw) {
		return ""
	}
	var structured struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &structured) == nil {
		if structured.Message != "" {
			return structured.Message
		}
		return structured.Error
	}
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
