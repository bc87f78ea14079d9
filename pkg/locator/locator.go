// Package locator finds the single live editable surface inside the
// host document.
//
// The host page is a third-party single-page application with
// obfuscated, versioned class names, so the search runs an ordered,
// redundant selector list (configuration data, see pkg/config) from
// most to least specific. Each candidate must render larger than a
// minimum visibility threshold: the true editing surface is the
// largest visible editable region, while administrative and decorative
// contenteditable nodes are smaller.
//
// The locator holds no cache. The host re-renders and replaces DOM
// nodes between keystrokes, so every call re-runs the full search.
package locator

import (
	"errors"

	"github.com/ghosttype/ghosttype/pkg/config"
	"github.com/ghosttype/ghosttype/pkg/dom"
	"github.com/ghosttype/ghosttype/pkg/logging"
)

// ErrNotFound means no candidate passed the search, typically because
// the host application's editor root is absent (page still loading).
var ErrNotFound = errors.New("editor surface not found")

// Locator searches the ambient document for the editor surface.
type Locator struct {
	doc       dom.Document
	selectors []string
	fallback  string
	minWidth  float64
	minHeight float64
	log       *logging.Logger
}

// New creates a locator over doc using the configured selector list.
func New(doc dom.Document, cfg config.LocatorConfig, log *logging.Logger) *Locator {
	return &Locator{
		doc:       doc,
		selectors: cfg.Selectors,
		fallback:  cfg.FallbackSelector,
		minWidth:  cfg.MinWidth,
		minHeight: cfg.MinHeight,
		log:       log,
	}
}

// Locate returns the element believed to be the host editor, or
// ErrNotFound. Candidates are evaluated in selector order, matches in
// document order, first sufficiently large match wins. When no
// selector yields an accepted element, the outermost known container
// is returned if present.
func (l *Locator) Locate() (dom.Element, error) {
	for _, selector := range l.selectors {
		elements, err := l.doc.QuerySelectorAll(selector)
		if err != nil {
			l.log.Debugf("selector %q query failed: %v", selector, err)
			continue
		}

		for _, el := range elements {
			if l.visible(el) {
				l.log.Debugf("selector %q matched editor surface", selector)
				return el, nil
			}
		}
	}

	if l.fallback != "" {
		elements, err := l.doc.QuerySelectorAll(l.fallback)
		if err == nil && len(elements) > 0 {
			l.log.Debugf("falling back to container %q", l.fallback)
			return elements[0], nil
		}
	}

	return nil, ErrNotFound
}

// visible reports whether the element renders larger than the
// visibility threshold in both dimensions.
func (l *Locator) visible(el dom.Element) bool {
	box, err := el.BoundingBox()
	if err != nil || box == nil {
		return false
	}
	return box.Width > l.minWidth && box.Height > l.minHeight
}
