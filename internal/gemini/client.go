// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/lumina-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the model used when the config names none.
	DefaultModel = "gemini-2.5-flash"

	// DefaultTimeout bounds a whole streaming call, connect through last
	// byte. Long generations stay well inside it.
	DefaultTimeout = 120 * time.Second

	// SystemPrompt is the assistant persona sent with every request.
	SystemPrompt = "You are Lumina, a helpful, witty, and concise AI assistant. " +
		"You prefer short, elegant answers unless asked for details. " +
		"You can see images and watch video clips."

	// FallbackText is rendered in place of a reply when the backend cannot
	// be reached or fails mid-stream. It is transcript content, not an
	// error message: the turn still settles around it.
	FallbackText = "I encountered an error connecting to the neural network. " +
		"Please check your connection and try again."
)

// =============================================================================
// CLIENT
// =============================================================================

// ClientConfig configures a Client. Zero fields take the package defaults.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	// RequestsPerMinute throttles outgoing calls client-side so a fast
	// typist cannot trip the service's own limiter. Zero disables it.
	RequestsPerMinute int
}

// Client talks to the Gemini streaming API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client from cfg, applying defaults for unset fields.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// =============================================================================
// REQUEST ASSEMBLY
// =============================================================================

// BuildRequest converts chat history into a generate request. The welcome
// message and messages with neither text nor attachments are excluded; each
// remaining message becomes one content turn with attachment parts first,
// then the text part.
func BuildRequest(history []model.Message) GenerateRequest {
	contents := make([]Content, 0, len(history))
	for _, msg := range history {
		if msg.ID == model.WelcomeID || msg.IsEmpty() {
			continue
		}
		parts := make([]Part, 0, len(msg.Attachments)+1)
		for _, att := range msg.Attachments {
			parts = append(parts, Part{
				InlineData: &InlineData{MIMEType: att.MIMEType, Data: att.Data},
			})
		}
		if msg.Text != "" {
			parts = append(parts, Part{Text: msg.Text})
		}
		contents = append(contents, Content{
			Role:  msg.Role.String(),
			Parts: parts,
		})
	}
	return GenerateRequest{
		SystemInstruction: &SystemInstruction{Parts: []Part{{Text: SystemPrompt}}},
		Contents:          contents,
	}
}

// =============================================================================
// STREAMING
// =============================================================================

// FragmentFunc receives one text fragment of a streaming reply. Fragments
// arrive in order on a single goroutine.
type FragmentFunc func(fragment string)

// GenerateStream sends history to the model and invokes onFragment for each
// text fragment as it arrives. It blocks until the stream ends, the context
// is canceled, or an error occurs.
func (c *Client) GenerateStream(ctx context.Context, history []model.Message, onFragment FragmentFunc) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return newError(ErrTypeCanceled, "canceled while rate limited", err)
		}
	}

	req := BuildRequest(history)
	body, err := json.Marshal(req)
	if err != nil {
		return newError(ErrTypeAPI, "encoding request", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return newError(ErrTypeConnection, "building request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return newError(ErrTypeCanceled, "request canceled", err)
		}
		return newError(ErrTypeConnection, "connecting to API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, onFragment)
}

// StreamReply is GenerateStream with the degraded-turn contract: on any
// failure it emits exactly one fallback fragment through onFragment before
// returning the error. Callers thus always receive at least one fragment
// and can settle the turn around visible text, successful or not.
func (c *Client) StreamReply(ctx context.Context, history []model.Message, onFragment FragmentFunc) error {
	received := false
	err := c.GenerateStream(ctx, history, func(fragment string) {
		received = true
		onFragment(fragment)
	})
	if err != nil && !received {
		onFragment(FallbackText)
	}
	return err
}

// statusError maps a non-200 response to a categorized error, pulling the
// API's own message out of the body when present.
func (c *Client) statusError(resp *http.Response) *ClientError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	msg := fmt.Sprintf("API returned %s", resp.Status)
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return newError(ErrTypeAuth, msg, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return newError(ErrTypeRateLimit, msg, nil)
	default:
		return newError(ErrTypeAPI, msg, nil)
	}
}
