package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	platformerrors "github.com/byteness/pasmigrate/errors"
	"github.com/byteness/pasmigrate/logging"
)

// Caller is the invocation surface the resolvers and factories depend on.
// Client implements it; tests substitute mock callers.
type Caller interface {
	// Invoke posts a JSON body to a tenant endpoint and returns the
	// unwrapped Result payload.
	Invoke(ctx context.Context, endpoint string, body any) (json.RawMessage, error)
	// Query runs a SQL query through the generic query endpoint and
	// returns the result rows.
	Query(ctx context.Context, sql string) ([]Row, error)
}

// envelope is the uniform response wrapper every tenant endpoint returns.
type envelope struct {
	Success   bool            `json:"success"`
	Result    json.RawMessage `json:"Result"`
	Message   string          `json:"Message"`
	MessageID string          `json:"MessageID"`
	Exception string          `json:"Exception"`
}

// Client is the JSON RPC client for one tenant session.
// It performs no automatic retries: every failure propagates to the caller
// immediately and is additionally retained in a last-error side channel for
// operator inspection.
type Client struct {
	session *Session
	httpc   *http.Client
	limiter *rate.Limiter
	logger  logging.Logger

	mu      sync.Mutex
	lastErr platformerrors.PlatformError
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithLogger sets the structured logger for query entries.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit caps outbound calls at rps per second. Bulk loops use this
// to stay inside tenant throttling thresholds; there is no default limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a client over an established session.
func NewClient(session *Session, opts ...Option) *Client {
	c := &Client{
		session: session,
		httpc:   &http.Client{Timeout: 60 * time.Second},
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client was built over.
func (c *Client) Session() *Session {
	return c.session
}

// LastError returns the most recent failure recorded by Invoke, or nil.
// This is a debugging aid, not a retry mechanism.
func (c *Client) LastError() platformerrors.PlatformError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Invoke posts the JSON body to the endpoint and unwraps the envelope.
// Application-level failures (success=false) and transport failures both
// return a RemoteCallError carrying the endpoint and payload.
func (c *Client) Invoke(ctx context.Context, endpoint string, body any) (json.RawMessage, error) {
	if !c.session.Connected() {
		err := platformerrors.NewNotConnected(endpoint)
		c.record(err)
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		wrapped := platformerrors.WrapRemoteCallError(err, endpoint, "")
		c.record(wrapped)
		return nil, wrapped
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	requestID := uuid.NewString()
	start := time.Now()
	result, invokeErr := c.post(ctx, endpoint, payload)

	entry := logging.QueryLogEntry{
		Timestamp:  time.Now().UTC(),
		RequestID:  requestID,
		Endpoint:   endpoint,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    invokeErr == nil,
	}
	if invokeErr != nil {
		entry.Error = invokeErr.Error()
	}
	c.logger.LogQuery(entry)

	if invokeErr != nil {
		wrapped := platformerrors.WrapRemoteCallError(invokeErr, endpoint, string(payload))
		c.record(wrapped)
		return nil, wrapped
	}
	return result, nil
}

// post performs the HTTP exchange and envelope unwrap.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.session.URL(endpoint), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CENTRIFY-NATIVE-CLIENT", "true")
	c.session.apply(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Exception
		}
		if msg == "" {
			msg = "tenant reported failure without a message"
		}
		return nil, fmt.Errorf("%s (MessageID=%s)", msg, env.MessageID)
	}
	return env.Result, nil
}

// record stores the last failure for LastError.
func (c *Client) record(err platformerrors.PlatformError) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// truncate bounds diagnostic strings embedded in errors.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
