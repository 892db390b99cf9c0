// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/verity-tui/internal/logging"
	"github.com/jeranaias/verity-tui/internal/query"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoEndpoint is returned by Open when no base URL is configured. The
// caller falls back to the local simulator; this is not shown to the user.
var ErrNoEndpoint = errors.New("stream: no endpoint configured")

// =============================================================================
// SHARED HTTP CLIENT
// =============================================================================

// sharedStreamingClient is reused across turns for connection pooling.
// No overall timeout: stream lifetime is governed by the per-turn context.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Client opens per-turn push streams against the remote reasoning service.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewClient creates a transport client for the given base URL. An empty
// base URL produces an unconfigured client whose Open fails with
// ErrNoEndpoint.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    sharedStreamingClient,
		// A turn per 500ms with small bursts; protects the service from
		// accidental rapid-fire resubmission.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 3),
		log:     logging.Named("stream"),
	}
}

// IsConfigured reports whether a remote endpoint is available.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// Open starts a turn against the remote endpoint and returns its handle in
// the Connecting state. The stream is consumed via Handle.Events.
func (c *Client) Open(ctx context.Context, desc query.Descriptor) (*Handle, error) {
	if !c.IsConfigured() {
		return nil, ErrNoEndpoint
	}

	endpoint, err := c.endpointURL(desc)
	if err != nil {
		return nil, err
	}

	h := newHandle(ctx)
	c.log.Debug("turn opened",
		zap.String("session", desc.SessionID),
		zap.String("provider", string(desc.Provider)))

	go c.run(h, endpoint)
	return h, nil
}

// endpointURL encodes a descriptor into the stream request URL.
func (c *Client) endpointURL(desc query.Descriptor) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.New("stream: invalid endpoint URL")
	}
	u = u.JoinPath("api", "chat", "stream")

	provider := "kernel"
	if desc.Provider == query.ProviderHybrid {
		provider = "hybrid"
	}

	params := url.Values{}
	params.Set("q", desc.Text)
	params.Set("sessionId", desc.SessionID)
	params.Set("provider", provider)
	params.Set("model", desc.ModelHint)
	params.Set("mode", string(desc.Mode))
	params.Set("council", strconv.Itoa(desc.CouncilSize))
	params.Set("truth", strconv.FormatBool(desc.TruthMode))
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// run dials the endpoint and pumps frames into the handle until a terminal
// transition. Runs on its own goroutine; all event delivery is gated by the
// handle's state machine.
func (c *Client) run(h *Handle, endpoint string) {
	defer h.close()

	if err := c.limiter.Wait(h.ctx); err != nil {
		h.fail("request cancelled before connecting")
		return
	}

	req, err := http.NewRequestWithContext(h.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		h.fail("could not build stream request")
		return
	}
	req.Header.Set("Accept", "application/x-ndjson, text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		if h.State() == StateCancelled {
			return
		}
		c.log.Warn("connect failed", zap.Error(err))
		h.fail("connection failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("non-success status", zap.Int("status", resp.StatusCode))
		h.fail("service returned status " + strconv.Itoa(resp.StatusCode))
		return
	}

	h.pump(resp.Body)
}
