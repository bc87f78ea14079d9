// Package emitter injects synthetic input into the host editor.
//
// A character is emitted through layered fallback strategies, most
// faithful first: the platform's insert-at-caret editing command, then
// direct selection/range manipulation, then synthesized keyboard
// events, then beforeinput/input event pairs, then a raw text append.
// Which strategy lands depends on the host's internal input pipeline,
// which is undocumented and changes between host versions; redundancy
// is the point.
//
// Emission never fails upward. A strategy that throws is logged and
// the next one runs; when all strategies fail the character is dropped
// and the session continues.
package emitter

import (
	"github.com/ghosttype/ghosttype/pkg/config"
	"github.com/ghosttype/ghosttype/pkg/dom"
	"github.com/ghosttype/ghosttype/pkg/logging"
)

// Emitter makes characters appear in the editor as if typed.
type Emitter struct {
	strategies []Strategy
	log        *logging.Logger
}

// New creates an emitter with the default strategy order.
func New(cfg config.EmitterConfig, log *logging.Logger) *Emitter {
	return &Emitter{
		strategies: defaultStrategies(cfg.InnerSelectors),
		log:        log,
	}
}

// Prime focuses the editor and positions the caret at the end of the
// document before a session's first character.
func (e *Emitter) Prime(el dom.Element) error {
	if err := el.Focus(); err != nil {
		e.log.Debugf("element focus failed: %v", err)
	}
	_, err := el.Evaluate(primeCaretJS, nil)
	return err
}

// TypeChar attempts to make ch appear at the caret. Strategies run in
// order until one succeeds; every failure is logged, never surfaced,
// so one bad character cannot halt a session.
func (e *Emitter) TypeChar(el dom.Element, ch rune) {
	s := string(ch)

	for _, strat := range e.strategies {
		if err := strat.Attempt(el, s); err != nil {
			e.log.Debugf("strategy %s failed for %q: %v", strat.Name, s, err)
			continue
		}
		e.log.Debugf("strategy %s emitted %q", strat.Name, s)
		return
	}

	e.log.Warnf("all emission strategies failed for %q; character dropped", s)
}
