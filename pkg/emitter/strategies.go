package emitter

import (
	"errors"
	"fmt"

	"github.com/ghosttype/ghosttype/pkg/dom"
)

// errNoSelection marks the selection strategy skipped because the
// document has no live range. Not fatal; later strategies still run.
var errNoSelection = errors.New("no live selection range")

// Strategy is one method of making a character appear as if typed.
// Attempt returns nil when the strategy believes the character landed.
// Strategies are independent and tolerant of repetition; the emitter
// runs them in order until one succeeds.
type Strategy struct {
	Name    string
	Attempt func(el dom.Element, ch string) error
}

// insertTextJS invokes the platform's native insert-at-caret editing
// command. execCommand returns false when the command is unsupported
// or rejected.
const insertTextJS = `(el, ch) => {
	const doc = el.ownerDocument || document;
	el.focus();
	return doc.execCommand('insertText', false, ch);
}`

// selectionInsertJS splices a text node into the active range and
// collapses the caret immediately after it.
const selectionInsertJS = `(el, ch) => {
	const doc = el.ownerDocument || document;
	const win = doc.defaultView || window;
	const selection = win.getSelection();
	if (!selection || selection.rangeCount === 0) {
		return 'no-range';
	}
	const range = selection.getRangeAt(0);
	const node = doc.createTextNode(ch);
	range.insertNode(node);
	range.setStartAfter(node);
	range.setEndAfter(node);
	selection.removeAllRanges();
	selection.addRange(range);
	return 'inserted';
}`

// keyEventsJS dispatches the keydown/keypress/keyup triple with the
// character's code point and a synthesized physical key id. Bubbling
// is enabled so host listeners anywhere in the ancestor chain observe
// the events.
const keyEventsJS = `(el, ch) => {
	const keyCode = ch.charCodeAt(0);
	const code = 'Key' + ch.toUpperCase();
	for (const type of ['keydown', 'keypress', 'keyup']) {
		el.dispatchEvent(new KeyboardEvent(type, {
			key: ch,
			code: code,
			keyCode: keyCode,
			which: keyCode,
			bubbles: true,
			cancelable: true,
			composed: true,
		}));
	}
	return true;
}`

// inputEventsJS dispatches the beforeinput/input pair on the most
// specific inner content node, since the host's input pipeline may
// listen there rather than on the editor root.
const inputEventsJS = `(el, arg) => {
	const doc = el.ownerDocument || document;
	let target = null;
	for (const sel of arg.selectors) {
		target = el.querySelector(sel) || doc.querySelector(sel);
		if (target) break;
	}
	if (!target) target = el;
	const opts = {
		inputType: 'insertText',
		data: arg.ch,
		bubbles: true,
		cancelable: true,
		composed: true,
	};
	target.dispatchEvent(new InputEvent('beforeinput', opts));
	target.dispatchEvent(new InputEvent('input', opts));
	return true;
}`

// appendTextJS is the last resort: mutate the node's text content
// directly. No caret movement, no events.
const appendTextJS = `(el, ch) => {
	if (el.textContent === undefined || el.textContent === null) {
		return false;
	}
	el.textContent += ch;
	return true;
}`

// primeCaretJS focuses the editor, places the caret at the end of the
// document (or offset zero when empty), and dispatches a synthetic
// click at the visual center to coax the host into acknowledging
// focus.
const primeCaretJS = `el => {
	el.focus();
	const doc = el.ownerDocument || document;
	const win = doc.defaultView || window;
	const range = doc.createRange();
	const selection = win.getSelection();
	selection.removeAllRanges();
	if (el.childNodes.length > 0) {
		const last = el.childNodes[el.childNodes.length - 1];
		if (last.nodeType === Node.TEXT_NODE) {
			range.setStart(last, last.textContent.length);
			range.setEnd(last, last.textContent.length);
		} else {
			range.setStartAfter(last);
			range.setEndAfter(last);
		}
	} else {
		range.setStart(el, 0);
		range.setEnd(el, 0);
	}
	selection.addRange(range);
	const rect = el.getBoundingClientRect();
	el.dispatchEvent(new MouseEvent('click', {
		clientX: rect.left + rect.width / 2,
		clientY: rect.top + rect.height / 2,
		bubbles: true,
		cancelable: true,
	}));
	return true;
}`

// defaultStrategies returns the emission strategy list in fallback
// order. innerSelectors configures where the input-event strategy
// dispatches.
func defaultStrategies(innerSelectors []string) []Strategy {
	return []Strategy{
		{
			Name: "insert-text-command",
			Attempt: func(el dom.Element, ch string) error {
				result, err := el.Evaluate(insertTextJS, ch)
				if err != nil {
					return err
				}
				if ok, _ := result.(bool); !ok {
					return fmt.Errorf("execCommand rejected insertText")
				}
				return nil
			},
		},
		{
			Name: "selection-insert",
			Attempt: func(el dom.Element, ch string) error {
				result, err := el.Evaluate(selectionInsertJS, ch)
				if err != nil {
					return err
				}
				if result == "no-range" {
					return errNoSelection
				}
				return nil
			},
		},
		{
			Name: "key-events",
			Attempt: func(el dom.Element, ch string) error {
				_, err := el.Evaluate(keyEventsJS, ch)
				return err
			},
		},
		{
			Name: "input-events",
			Attempt: func(el dom.Element, ch string) error {
				arg := map[string]any{
					"ch":        ch,
					"selectors": innerSelectors,
				}
				_, err := el.Evaluate(inputEventsJS, arg)
				return err
			},
		},
		{
			Name: "append-text",
			Attempt: func(el dom.Element, ch string) error {
				result, err := el.Evaluate(appendTextJS, ch)
				if err != nil {
					return err
				}
				if ok, _ := result.(bool); !ok {
					return fmt.Errorf("target has no text content to append to")
				}
				return nil
			},
		},
	}
}
