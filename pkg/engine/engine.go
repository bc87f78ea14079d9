// Package engine owns the typing session state machine. A session
// moves idle → running → (paused ↔ running) → idle, emitting one
// character at a time through the synthetic input emitter with a
// humanlike variable delay between characters.
//
// One engine exists per attached page, and it holds at most one
// session at a time. All operations and the timer-driven step
// serialize on a single mutex, so stop returning guarantees no further
// character is emitted, and a start that supersedes a running session
// leaves nothing of the old session in flight.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghosttype/ghosttype/pkg/dom"
	"github.com/ghosttype/ghosttype/pkg/logging"
)

// Validation errors returned by Start. The popup pre-validates input;
// the engine re-checks anyway rather than trusting the caller.
var (
	ErrEmptyText    = errors.New("text cannot be empty")
	ErrLineBreaks   = errors.New("text cannot contain line breaks")
	ErrInvalidSpeed = errors.New("speed must be a positive number")
)

// DefaultMaxTextLength caps the session payload, matching the popup's
// input limit.
const DefaultMaxTextLength = 1000

// Locator finds the live editor surface in the host document. It is
// queried fresh for every character; the host may have re-rendered the
// surface between keystrokes.
type Locator interface {
	Locate() (dom.Element, error)
}

// Emitter makes characters appear in the editor as if typed.
type Emitter interface {
	// Prime focuses the editor and positions the caret before the
	// first character of a session.
	Prime(el dom.Element) error

	// TypeChar emits one character. It never fails: emission problems
	// are logged and the character is dropped.
	TypeChar(el dom.Element, ch rune)
}

// Outcome classifies how a session ended.
type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeStopped    Outcome = "stopped"
	OutcomeSuperseded Outcome = "superseded"
)

// SessionRecord summarizes a finished session. It carries counts and
// timings only; the typed text is never persisted.
type SessionRecord struct {
	ID        uuid.UUID
	StartedAt time.Time
	EndedAt   time.Time
	WPM       float64
	Length    int
	Emitted   int
	Outcome   Outcome
}

// Recorder receives session summaries at terminal transitions.
type Recorder interface {
	Record(rec SessionRecord)
}

// Snapshot is a point-in-time read of the session state.
type Snapshot struct {
	Running bool
	Paused  bool
	Cursor  int
	Length  int
	WPM     float64
}

// session is the sole mutable entity. The zero value is the empty idle
// session.
type session struct {
	id        uuid.UUID
	running   bool
	paused    bool
	text      []rune
	cursor    int
	wpm       float64
	emitted   int
	startedAt time.Time
}

// Engine drives typing sessions.
type Engine struct {
	mu sync.Mutex

	locator  Locator
	emitter  Emitter
	sched    Scheduler
	recorder Recorder
	log      *logging.Logger

	maxTextLen int
	jitter     func() float64

	// gen invalidates scheduled steps that outlive the session or
	// pause that scheduled them. A step fired just before Cancel still
	// runs, but finds its generation stale and does nothing.
	gen uint64

	s session
}

// New creates an engine bound to a locator and emitter. The returned
// engine is idle.
func New(locator Locator, emitter Emitter, log *logging.Logger) *Engine {
	return &Engine{
		locator:    locator,
		emitter:    emitter,
		sched:      NewTimerScheduler(),
		log:        log,
		maxTextLen: DefaultMaxTextLength,
		jitter:     uniformJitter(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

// SetRecorder attaches a session summary recorder. Pass nil to detach.
func (e *Engine) SetRecorder(r Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = r
}

// SetMaxTextLength overrides the payload cap.
func (e *Engine) SetMaxTextLength(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n > 0 {
		e.maxTextLen = n
	}
}

// Start begins a new session, implicitly stopping any prior one. It
// fails when the text or speed is invalid or when no editor surface
// can be located at call time. Text longer than the cap is truncated
// rather than rejected.
func (e *Engine) Start(text string, wpm float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if wpm <= 0 {
		return ErrInvalidSpeed
	}
	if text == "" {
		return ErrEmptyText
	}
	if strings.ContainsAny(text, "\r\n") {
		return ErrLineBreaks
	}

	runes := []rune(text)
	if len(runes) > e.maxTextLen {
		e.log.Warnf("payload of %d characters truncated to %d", len(runes), e.maxTextLen)
		runes = runes[:e.maxTextLen]
	}

	// The editor must be present before a session begins. Located
	// fresh here and again on every step.
	el, err := e.locator.Locate()
	if err != nil {
		return fmt.Errorf("editor not found: %w", err)
	}

	e.stopLocked(OutcomeSuperseded)

	e.s = session{
		id:        uuid.New(),
		running:   true,
		text:      runes,
		wpm:       wpm,
		startedAt: time.Now(),
	}
	e.log.Infof("session %s started: %d characters at %.0f wpm", e.s.id, len(runes), wpm)

	if err := e.emitter.Prime(el); err != nil {
		// Not fatal: emission strategies each re-focus as needed.
		e.log.Warnf("caret priming failed: %v", err)
	}

	e.scheduleLocked(0)
	return nil
}

// Pause suspends scheduling, keeping the cursor position. A no-op
// unless a session is running and not already paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.running || e.s.paused {
		return
	}

	e.gen++
	e.sched.Cancel()
	e.s.paused = true
	e.log.Infof("session %s paused at character %d/%d", e.s.id, e.s.cursor, len(e.s.text))
}

// Resume continues a paused session, scheduling the next character
// immediately. A no-op unless a session is running and paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.running || !e.s.paused {
		return
	}

	e.s.paused = false
	e.log.Infof("session %s resumed at character %d/%d", e.s.id, e.s.cursor, len(e.s.text))
	e.scheduleLocked(0)
}

// Stop cancels any pending character and resets to the empty idle
// session. Valid from any state.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(OutcomeStopped)
}

// Running reports whether a session is active. Pure read.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.running
}

// Status returns a snapshot of the session state.
func (e *Engine) Status() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Running: e.s.running,
		Paused:  e.s.paused,
		Cursor:  e.s.cursor,
		Length:  len(e.s.text),
		WPM:     e.s.wpm,
	}
}

// stopLocked cancels the pending timer and clears the session,
// recording the given outcome when a session was actually running.
func (e *Engine) stopLocked(outcome Outcome) {
	e.gen++
	e.sched.Cancel()

	if e.s.running {
		e.log.Infof("session %s %s after %d/%d characters", e.s.id, outcome, e.s.emitted, len(e.s.text))
		e.recordLocked(outcome)
	}
	e.s = session{}
}

// scheduleLocked queues the next step. Scheduling always replaces the
// pending task, preserving the single-pending-timer invariant.
func (e *Engine) scheduleLocked(d time.Duration) {
	gen := e.gen
	e.sched.Schedule(d, func() { e.step(gen) })
}

// step is one timer-driven character emission. It re-validates state
// on entry: the timer may have fired just before a pause, stop, or
// superseding start.
func (e *Engine) step(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return // stale wake-up
	}
	if !e.s.running || e.s.paused {
		return
	}

	if e.s.cursor >= len(e.s.text) {
		e.log.Infof("session %s completed: %d characters", e.s.id, e.s.emitted)
		e.recordLocked(OutcomeCompleted)
		e.s = session{}
		return
	}

	// Locate fresh every character. The host may have replaced the
	// editor node since the last keystroke.
	el, err := e.locator.Locate()
	if err != nil {
		// The session stalls running with no pending timer. Visible
		// only through status; stop clears it.
		e.log.Errorf("session %s stalled at character %d: %v", e.s.id, e.s.cursor, err)
		return
	}

	ch := e.s.text[e.s.cursor]
	e.emitter.TypeChar(el, ch)
	e.s.cursor++
	e.s.emitted++

	e.scheduleLocked(Delay(e.s.wpm, e.jitter()))
}

func (e *Engine) recordLocked(outcome Outcome) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(SessionRecord{
		ID:        e.s.id,
		StartedAt: e.s.startedAt,
		EndedAt:   time.Now(),
		WPM:       e.s.wpm,
		Length:    len(e.s.text),
		Emitted:   e.s.emitted,
		Outcome:   outcome,
	})
}
