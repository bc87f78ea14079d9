// Package dom defines the narrow view of a live page that the locator
// and emitter operate through. The production implementation wraps
// Playwright handles (pkg/browser); tests substitute fakes so the
// search and emission logic runs without a browser.
package dom

// Rect is an element's bounding box in CSS pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Element is one live element in the host document.
type Element interface {
	// Evaluate runs a JavaScript expression against the element. The
	// expression receives the element as its argument, Playwright
	// style: "el => ...". The second parameter, when non-nil, is
	// passed through as an additional argument.
	Evaluate(expression string, arg any) (any, error)

	// BoundingBox returns the element's rendered bounding box, or nil
	// when the element is not rendered.
	BoundingBox() (*Rect, error)

	// Focus gives the element keyboard focus.
	Focus() error
}

// Document is the ambient host document the locator searches.
//
// The host page re-renders freely between calls; implementations must
// not cache query results.
type Document interface {
	// QuerySelectorAll returns all elements matching the selector, in
	// document order. A selector matching nothing returns an empty
	// slice, not an error.
	QuerySelectorAll(selector string) ([]Element, error)

	// URL returns the document's current address.
	URL() string
}
