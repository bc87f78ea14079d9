package control

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghosttype/ghosttype/pkg/logging"
)

// echoHandler answers from a canned table keyed by action.
type echoHandler struct {
	responses map[string]Response
	requests  []Request
}

func (h *echoHandler) Handle(req Request) Response {
	h.requests = append(h.requests, req)
	if resp, ok := h.responses[req.Action]; ok {
		return resp
	}
	return Response{Error: "Unknown action"}
}

func startTestServer(t *testing.T, h CommandHandler) *Server {
	t.Helper()
	srv := NewServer("127.0.0.1:0", h, logging.Discard())
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func TestClientServerRoundTrip(t *testing.T) {
	h := &echoHandler{responses: map[string]Response{
		ActionPing:   {Message: "pong", Timestamp: 1234},
		ActionStart:  {Success: true},
		ActionStatus: {IsTyping: Bool(true)},
	}}
	srv := startTestServer(t, h)
	client := NewClient(srv.Addr())

	resp, err := client.Ping()
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Message)
	assert.Equal(t, int64(1234), resp.Timestamp)

	resp, err = client.Start("hello world", 60)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	typing, err := client.Status()
	require.NoError(t, err)
	assert.True(t, typing)

	// The start request carried its payload intact.
	var startReq *Request
	for i := range h.requests {
		if h.requests[i].Action == ActionStart {
			startReq = &h.requests[i]
		}
	}
	require.NotNil(t, startReq)
	assert.Equal(t, "hello world", startReq.Text)
	assert.Equal(t, 60.0, startReq.Speed)
}

func TestUnknownActionPassesThrough(t *testing.T) {
	h := &echoHandler{}
	srv := startTestServer(t, h)
	client := NewClient(srv.Addr())

	resp, err := client.Do(Request{Action: "frobnicate"})
	require.NoError(t, err)
	assert.Equal(t, "Unknown action", resp.Error)
}

func TestServerRejectsNonPost(t *testing.T) {
	srv := startTestServer(t, &echoHandler{})

	resp, err := http.Get("http://" + srv.Addr() + "/command")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerRejectsMalformedBody(t *testing.T) {
	srv := startTestServer(t, &echoHandler{})

	resp, err := http.Post("http://"+srv.Addr()+"/command", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "malformed request", decoded.Error)
}

func TestClientTransportFailure(t *testing.T) {
	// Nothing listens here; every action should surface a transport
	// error rather than a Response.
	client := NewClient("127.0.0.1:1")
	client.retries = 2
	client.backoff = time.Millisecond

	_, err := client.Ping()
	assert.Error(t, err)

	_, err = client.Start("text", 60)
	assert.Error(t, err)

	_, err = client.Stop()
	assert.Error(t, err)
}

func TestStartRetriesTransportErrors(t *testing.T) {
	// A server that only comes up after the first attempt would be
	// racy to orchestrate; instead verify the retry budget is spent.
	client := NewClient("127.0.0.1:1")
	client.retries = 3
	client.backoff = time.Millisecond

	begin := time.Now()
	_, err := client.Start("x", 60)
	require.Error(t, err)

	// Two backoff waits (1ms, 2ms) happened between three attempts.
	assert.GreaterOrEqual(t, time.Since(begin), 3*time.Millisecond)
}

func TestServerAddrBeforeStart(t *testing.T) {
	srv := NewServer("127.0.0.1:7777", &echoHandler{}, logging.Discard())
	assert.Equal(t, "127.0.0.1:7777", srv.Addr())
}
