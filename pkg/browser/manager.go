// Package browser boots and owns the Playwright-driven Chromium
// instance the actor types into. It is the injection mechanism of the
// system: it attaches the process to the host document's page and
// hands the rest of the core a live DOM.
//
// Exactly one session exists per daemon. Concurrent typing into
// multiple documents is out of scope, so the session is a single
// managed browser/context/page triple rather than a registry.
package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/ghosttype/ghosttype/pkg/logging"
)

// Options configures the managed browser session.
type Options struct {
	// Headless controls whether the browser runs without a visible
	// window. Headed keeps the simulated typing observable.
	Headless bool

	// ViewportWidth and ViewportHeight set the initial viewport size.
	ViewportWidth  int
	ViewportHeight int

	// TimeoutMs is the default timeout for page operations.
	TimeoutMs float64
}

// Manager owns the Playwright runtime and the single browser session.
type Manager struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	session     *Session
	initialized bool
	log         *logging.Logger
}

// NewManager creates an uninitialized manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{log: log}
}

// Initialize installs and starts the Playwright runtime. Must be
// called before opening the session. Safe to call twice.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Install quietly; driver download chatter does not belong on the
	// daemon's terminal.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.pw = pw
	m.initialized = true
	return nil
}

// OpenSession launches the browser and creates the session. Fails if
// a session already exists.
func (m *Manager) OpenSession(opts Options) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}
	if m.session != nil {
		return nil, fmt.Errorf("browser session already open")
	}

	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1280
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = 720
	}
	if opts.TimeoutMs == 0 {
		opts.TimeoutMs = 30000
	}

	browser, err := m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.TimeoutMs)

	m.session = &Session{
		Browser:   browser,
		Context:   context,
		Page:      page,
		Headless:  opts.Headless,
		CreatedAt: time.Now(),
		log:       m.log,
	}
	m.log.Infof("browser session opened (headless=%v, viewport=%dx%d)",
		opts.Headless, opts.ViewportWidth, opts.ViewportHeight)
	return m.session, nil
}

// Session returns the open session, or nil.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Shutdown closes the session and stops the Playwright runtime.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.close()
		m.session = nil
	}

	if m.initialized && m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
