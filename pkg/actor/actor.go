// Package actor exposes the typing engine's operations over the
// control channel. It is the page-side end of the command protocol:
// the popup surfaces send requests, the actor delegates to the engine
// and answers with plain payloads.
package actor

import (
	"errors"
	"sync"
	"time"

	"github.com/ghosttype/ghosttype/pkg/control"
	"github.com/ghosttype/ghosttype/pkg/engine"
	"github.com/ghosttype/ghosttype/pkg/locator"
	"github.com/ghosttype/ghosttype/pkg/logging"
)

// noEditorMessage is the user-facing error when no editor surface can
// be located at start time.
const noEditorMessage = "Could not find the document editor. Please make sure the document view is open and fully loaded."

// Actor handles control commands against one typing engine.
type Actor struct {
	mu        sync.Mutex
	engine    *engine.Engine
	log       *logging.Logger
	installed bool
}

// New creates an actor for the given engine. The actor starts
// uninstalled; the supervisor installs it once the page qualifies.
func New(eng *engine.Engine, log *logging.Logger) *Actor {
	return &Actor{
		engine: eng,
		log:    log,
	}
}

// Install marks the actor live on the page. Idempotent: a second
// install is a no-op that leaves the first instance's session intact.
// Returns whether this call performed the install.
func (a *Actor) Install() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.installed {
		a.log.Debugf("actor already installed, skipping")
		return false
	}
	a.installed = true
	a.log.Infof("actor installed")
	return true
}

// Installed reports whether the actor is live.
func (a *Actor) Installed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.installed
}

// Handle processes one control request. Safe to invoke before any
// session exists; the empty idle session answers like any other.
func (a *Actor) Handle(req control.Request) control.Response {
	switch req.Action {
	case control.ActionPing:
		return control.Response{
			Message:   "pong",
			Timestamp: time.Now().UnixMilli(),
		}

	case control.ActionStart:
		if err := a.engine.Start(req.Text, req.Speed); err != nil {
			a.log.Warnf("start rejected: %v", err)
			return control.Response{Error: startErrorMessage(err)}
		}
		return control.Response{Success: true}

	case control.ActionPause:
		a.engine.Pause()
		return control.Response{Success: true}

	case control.ActionResume:
		a.engine.Resume()
		return control.Response{Success: true}

	case control.ActionStop:
		a.engine.Stop()
		return control.Response{Success: true}

	case control.ActionStatus:
		return control.Response{IsTyping: control.Bool(a.engine.Running())}

	default:
		return control.Response{Error: "Unknown action"}
	}
}

// startErrorMessage translates engine errors into the strings shown to
// the user.
func startErrorMessage(err error) string {
	if errors.Is(err, locator.ErrNotFound) {
		return noEditorMessage
	}
	return err.Error()
}
