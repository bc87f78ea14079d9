// Package popup provides the interactive terminal control surface for a
// running typing daemon. It mirrors the daemon's command protocol: compose
// text, pick a speed, then start, pause, resume, or stop the session while
// watching live status.
package popup

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ghosttype/ghosttype/pkg/control"
)

const (
	maxTextLength = 1000
	minWPM        = 5
	maxWPM        = 600
	wpmStep       = 5

	statusPollInterval = 500 * time.Millisecond
)

// Controller is the subset of the control client the popup drives.
type Controller interface {
	Start(text string, speed float64) (control.Response, error)
	Pause() (control.Response, error)
	Resume() (control.Response, error)
	Stop() (control.Response, error)
	Status() (bool, error)
}

type tickMsg time.Time

type statusMsg struct {
	typing bool
	err    error
}

type commandResultMsg struct {
	resp control.Response
	err  error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	typingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	feedbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea popup UI.
type Model struct {
	controller Controller

	input textinput.Model
	wpm   int

	connected bool
	typing    bool
	feedback  string
	errText   string

	width int
}

// NewModel constructs the popup model around a control client.
func NewModel(controller Controller, defaultWPM int) *Model {
	ti := textinput.New()
	ti.Placeholder = "Text to type into the document"
	ti.CharLimit = maxTextLength
	ti.Focus()

	wpm := defaultWPM
	if wpm < minWPM {
		wpm = minWPM
	}
	if wpm > maxWPM {
		wpm = maxWPM
	}

	return &Model{
		controller: controller,
		input:      ti,
		wpm:        wpm,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.pollStatus(), tick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.pollStatus(), tick())

	case statusMsg:
		if msg.err != nil {
			m.connected = false
			return m, nil
		}
		m.connected = true
		m.typing = msg.typing
		return m, nil

	case commandResultMsg:
		m.applyCommandResult(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m, m.startTyping()
	case tea.KeyUp:
		m.wpm = clampWPM(m.wpm + wpmStep)
		return m, nil
	case tea.KeyDown:
		m.wpm = clampWPM(m.wpm - wpmStep)
		return m, nil
	case tea.KeyCtrlP:
		return m, m.command(m.controller.Pause)
	case tea.KeyCtrlR:
		return m, m.command(m.controller.Resume)
	case tea.KeyCtrlS:
		return m, m.command(m.controller.Stop)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Pasted text can smuggle line breaks into a single-line input.
	if sanitized := SanitizeText(m.input.Value()); sanitized != m.input.Value() {
		m.input.SetValue(sanitized)
		m.input.CursorEnd()
	}
	return m, cmd
}

func (m *Model) startTyping() tea.Cmd {
	text := SanitizeText(m.input.Value())
	if strings.TrimSpace(text) == "" {
		m.errText = "Enter some text to type first."
		m.feedback = ""
		return nil
	}
	if len([]rune(text)) > maxTextLength {
		m.errText = fmt.Sprintf("Text is too long (max %d characters).", maxTextLength)
		m.feedback = ""
		return nil
	}
	m.errText = ""
	wpm := m.wpm
	return func() tea.Msg {
		resp, err := m.controller.Start(text, float64(wpm))
		return commandResultMsg{resp: resp, err: err}
	}
}

func (m *Model) command(call func() (control.Response, error)) tea.Cmd {
	return func() tea.Msg {
		resp, err := call()
		return commandResultMsg{resp: resp, err: err}
	}
}

func (m *Model) applyCommandResult(msg commandResultMsg) {
	if msg.err != nil {
		m.connected = false
		m.errText = "Daemon is not reachable. Is ghosttype serve running?"
		m.feedback = ""
		return
	}
	m.connected = true
	if msg.resp.Error != "" {
		m.errText = msg.resp.Error
		m.feedback = ""
		return
	}
	m.errText = ""
	if msg.resp.Message != "" {
		m.feedback = msg.resp.Message
	} else {
		m.feedback = "OK"
	}
}

func (m *Model) pollStatus() tea.Cmd {
	return func() tea.Msg {
		typing, err := m.controller.Status()
		return statusMsg{typing: typing, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(statusPollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ghosttype"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Speed: "))
	b.WriteString(fmt.Sprintf("%d wpm", m.wpm))
	b.WriteString("   ")
	b.WriteString(labelStyle.Render("Status: "))
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString("\n")
	} else if m.feedback != "" {
		b.WriteString(feedbackStyle.Render(m.feedback))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter start · ctrl+p pause · ctrl+r resume · ctrl+s stop · ↑/↓ speed · esc quit"))
	return b.String()
}

func (m *Model) statusLine() string {
	if !m.connected {
		return errorStyle.Render("disconnected")
	}
	if m.typing {
		return typingStyle.Render("typing")
	}
	return idleStyle.Render("idle")
}

// SanitizeText removes line breaks from pasted input. The typing session
// rejects multi-line text, so the popup never lets it through.
func SanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.ReplaceAll(text, "\r", " ")
}

func clampWPM(wpm int) int {
	if wpm < minWPM {
		return minWPM
	}
	if wpm > maxWPM {
		return maxWPM
	}
	return wpm
}

// Run starts the popup program against the given controller.
func Run(controller Controller, defaultWPM int) error {
	p := tea.NewProgram(NewModel(controller, defaultWPM))
	_, err := p.Run()
	return err
}
