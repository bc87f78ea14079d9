// Package supervisor coordinates actor installation. It watches the
// managed page and installs the actor only when the page's address
// matches the host editor application's document-view pattern and the
// page has finished loading. A page that already carries a live actor
// is left alone.
package supervisor

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/ghosttype/ghosttype/pkg/logging"
)

// Page is the supervised page surface.
type Page interface {
	// URL returns the page's current address.
	URL() string

	// OnLoad registers fn for every completed page load.
	OnLoad(fn func())
}

// Installer is the actor lifecycle as the supervisor sees it.
type Installer interface {
	// Installed reports whether a live actor is on the page.
	Installed() bool

	// Install puts the actor on the page. Idempotent.
	Install() bool
}

// Supervisor installs the actor into qualifying pages.
type Supervisor struct {
	page    Page
	actor   Installer
	pattern glob.Glob
	rawPat  string
	log     *logging.Logger
}

// New creates a supervisor matching page addresses against urlPattern
// (glob syntax, e.g. "https://docs.google.com/document/*").
func New(page Page, actor Installer, urlPattern string, log *logging.Logger) (*Supervisor, error) {
	pattern, err := glob.Compile(urlPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid document url pattern %q: %w", urlPattern, err)
	}
	return &Supervisor{
		page:    page,
		actor:   actor,
		pattern: pattern,
		rawPat:  urlPattern,
		log:     log,
	}, nil
}

// Watch evaluates the page immediately and re-evaluates on every page
// load, so reloads and navigations re-install the actor. The session
// itself does not survive a reload; a fresh actor starts idle.
func (s *Supervisor) Watch() {
	s.page.OnLoad(s.Ensure)
	s.Ensure()
}

// Ensure installs the actor when the current page qualifies. Skips
// pages whose address does not match the document-view pattern and
// pages that already answer with a live actor.
func (s *Supervisor) Ensure() {
	url := s.page.URL()

	if !s.pattern.Match(url) {
		s.log.Debugf("page %s does not match %q, actor not installed", url, s.rawPat)
		return
	}

	if s.actor.Installed() {
		s.log.Debugf("actor already live on %s, skipping install", url)
		return
	}

	if s.actor.Install() {
		s.log.Infof("actor installed on %s", url)
	}
}
