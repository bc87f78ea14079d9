package control

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to a running actor over the control channel. Used by
// the CLI subcommands and the popup TUI.
type Client struct {
	baseURL string
	http    *http.Client

	// retries and backoff bound the resend policy for start commands
	// that fail at the transport level (daemon restarting, channel
	// momentarily closed).
	retries int
	backoff time.Duration
}

// NewClient creates a client for the control server at addr
// (host:port).
func NewClient(addr string) *Client {
	return &Client{
		baseURL: "http://" + addr,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		retries: 3,
		backoff: 200 * time.Millisecond,
	}
}

// Do sends one request and decodes the response. Transport failures
// (actor not running, channel closed) surface as errors; failures the
// actor reports come back inside the Response.
func (c *Client) Do(req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpResp, err := c.http.Post(c.baseURL+"/command", "application/json", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("could not reach the typing daemon: %w", err)
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("malformed response from daemon: %w", err)
	}
	return resp, nil
}

// Ping probes actor liveness.
func (c *Client) Ping() (Response, error) {
	return c.Do(Request{Action: ActionPing})
}

// Start begins a typing session. Transport failures are retried with
// linear backoff up to the bounded retry count; an error payload from
// the actor is returned as-is without retrying.
func (c *Client) Start(text string, speed float64) (Response, error) {
	req := Request{Action: ActionStart, Text: text, Speed: speed}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * c.backoff)
		}
		resp, err := c.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		return resp, nil
	}
	return Response{}, lastErr
}

// Pause suspends the running session.
func (c *Client) Pause() (Response, error) {
	return c.Do(Request{Action: ActionPause})
}

// Resume continues a paused session.
func (c *Client) Resume() (Response, error) {
	return c.Do(Request{Action: ActionResume})
}

// Stop ends the session and resets the actor to idle.
func (c *Client) Stop() (Response, error) {
	return c.Do(Request{Action: ActionStop})
}

// Status reports whether a session is active.
func (c *Client) Status() (bool, error) {
	resp, err := c.Do(Request{Action: ActionStatus})
	if err != nil {
		return false, err
	}
	if resp.IsTyping == nil {
		return false, fmt.Errorf("daemon returned no status")
	}
	return *resp.IsTyping, nil
}
