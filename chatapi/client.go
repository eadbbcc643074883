// Package chatapi is the request/response client for the backend chat
// endpoint and the wire types both sides share.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultEndpoint is the backend chat endpoint used when none is configured.
const DefaultEndpoint = "http://localhost:8000/chat"

// RequestIDHeader carries the per-exchange request ID.
const RequestIDHeader = "X-Request-ID"

const maxResponseBytes = 4 << 20

// Request is the chat exchange request body.
type Request struct {
	BotID   string `json:"bot_id"`
	Message string `json:"message"`
}

// Response is the chat exchange response body.
type Response struct {
	Response string `json:"response"`
}

// ErrMalformedResponse is returned when a 2xx body is not a valid Response.
var ErrMalformedResponse = errors.New("malformed chat response")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat endpoint returned status %d", e.StatusCode)
}

// Exchange records one request/response round trip.
type Exchange struct {
	ID           string
	BotID        string
	Message      string
	Endpoint     string
	Status       int
	RequestBody  []byte
	ResponseBody []byte
	Reply        string
	StartedAt    time.Time
	Duration     time.Duration
}

// Client performs chat exchanges. It keeps no per-conversation state and
// never retries.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	logger   zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. c itself is never
// modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout sets a per-exchange timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a client for endpoint. An empty endpoint uses DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string { return c.endpoint }

// Exchange sends text on behalf of botID and returns the reply. The returned
// Exchange is non-nil whenever the request was built, including on failure.
func (c *Client) Exchange(ctx context.Context, botID, text string) (*Exchange, error) {
	ex := &Exchange{
		ID:        uuid.NewString(),
		BotID:     botID,
		Message:   text,
		Endpoint:  c.endpoint,
		StartedAt: time.Now(),
	}
	log := c.logger.With().Str("request_id", ex.ID).Str("bot_id", botID).Logger()

	body, err := json.Marshal(Request{BotID: botID, Message: text})
	if err != nil {
		return ex, fmt.Errorf("encode chat request: %w", err)
	}
	ex.RequestBody = body

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ex, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, ex.ID)

	log.Debug().Int("bytes", len(body)).Msg("chat exchange start")
	resp, err := c.http.Do(req)
	if err != nil {
		ex.Duration = time.Since(ex.StartedAt)
		log.Warn().Err(err).Dur("duration", ex.Duration).Msg("chat exchange failed")
		return ex, fmt.Errorf("post chat request: %w", err)
	}
	defer resp.Body.Close()

	ex.Status = resp.StatusCode
	ex.ResponseBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	ex.Duration = time.Since(ex.StartedAt)
	if err != nil {
		log.Warn().Err(err).Msg("chat exchange read failed")
		return ex, fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Int("status", resp.StatusCode).Dur("duration", ex.Duration).Msg("chat exchange rejected")
		return ex, &StatusError{StatusCode: resp.StatusCode, Body: string(ex.ResponseBody)}
	}

	reply, err := decodeResponse(ex.ResponseBody)
	if err != nil {
		log.Warn().Err(err).Msg("chat exchange malformed")
		return ex, err
	}
	ex.Reply = reply

	log.Debug().Int("status", resp.StatusCode).Dur("duration", ex.Duration).Msg("chat exchange done")
	return ex, nil
}

func decodeResponse(body []byte) (string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	field, ok := raw["response"]
	if !ok {
		return "", fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}
	var reply *string
	if err := json.Unmarshal(field, &reply); err != nil || reply == nil {
		return "", fmt.Errorf("%w: response is not a string", ErrMalformedResponse)
	}
	return *reply, nil
}
