package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/ghosttype/ghosttype/pkg/dom"
	"github.com/ghosttype/ghosttype/pkg/logging"
)

// Session is the one live browser session: a Playwright browser with
// its context and the page the actor types into.
type Session struct {
	Browser   playwright.Browser
	Context   playwright.BrowserContext
	Page      playwright.Page
	Headless  bool
	CreatedAt time.Time

	log *logging.Logger
}

// Navigate drives the page to url and waits for the load event. The
// host is a single-page application that keeps rendering long after
// load; the locator copes with that by re-searching per character.
func (s *Session) Navigate(url string) error {
	_, err := s.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	s.log.Infof("navigated to %s", s.Page.URL())
	return nil
}

// URL returns the page's current address.
func (s *Session) URL() string {
	return s.Page.URL()
}

// OnLoad registers fn to run every time the page finishes loading,
// including reloads and navigations.
func (s *Session) OnLoad(fn func()) {
	s.Page.OnLoad(func(playwright.Page) {
		fn()
	})
}

// Document returns the dom view of the page for the locator and
// emitter.
func (s *Session) Document() dom.Document {
	return &pageDocument{page: s.Page}
}

// close releases the page, context, and browser, tolerating errors:
// teardown continues regardless.
func (s *Session) close() {
	_ = s.Page.Close()
	_ = s.Context.Close()
	_ = s.Browser.Close()
}

// pageDocument adapts a Playwright page to dom.Document.
type pageDocument struct {
	page playwright.Page
}

func (d *pageDocument) QuerySelectorAll(selector string) ([]dom.Element, error) {
	handles, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	elements := make([]dom.Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &element{handle: h})
	}
	return elements, nil
}

func (d *pageDocument) URL() string {
	return d.page.URL()
}

// element adapts a Playwright element handle to dom.Element.
type element struct {
	handle playwright.ElementHandle
}

func (e *element) Evaluate(expression string, arg any) (any, error) {
	if arg == nil {
		return e.handle.Evaluate(expression)
	}
	return e.handle.Evaluate(expression, arg)
}

func (e *element) BoundingBox() (*dom.Rect, error) {
	box, err := e.handle.BoundingBox()
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, nil
	}
	return &dom.Rect{
		X:      box.X,
		Y:      box.Y,
		Width:  box.Width,
		Height: box.Height,
	}, nil
}

func (e *element) Focus() error {
	return e.handle.Focus()
}
