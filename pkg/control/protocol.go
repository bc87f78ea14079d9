// Package control is the local command channel between the popup
// surfaces (CLI, TUI) and the actor. Requests and responses are plain
// JSON payloads over a loopback HTTP server; the protocol is the wire
// contract, shared by both ends.
package control

// Actions accepted by the command channel.
const (
	ActionPing   = "ping"
	ActionStart  = "start"
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionStop   = "stop"
	ActionStatus = "status"
)

// Request is one command sent to the actor.
type Request struct {
	Action string `json:"action"`

	// Text is the typing payload, start only.
	Text string `json:"text,omitempty"`

	// Speed is the target words-per-minute, start only.
	Speed float64 `json:"speed,omitempty"`
}

// Response is the actor's answer. All fields are best-effort; which
// are set depends on the action.
type Response struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`

	// Message and Timestamp answer liveness probes.
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`

	// IsTyping answers status. A pointer so an idle false still
	// serializes.
	IsTyping *bool `json:"isTyping,omitempty"`
}

// CommandHandler processes one request. Implemented by the actor.
type CommandHandler interface {
	Handle(req Request) Response
}

// Bool returns a pointer to b, for Response.IsTyping.
func Bool(b bool) *bool {
	return &b
}
