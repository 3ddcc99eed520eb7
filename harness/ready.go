package harness

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// readyKind enumerates the readiness policies.
type readyKind int

const (
	readyDOMContentLoaded readyKind = iota
	readyLoad
	readyNetworkIdle
	readyFixedDelay
	readySelector
	readyCondition
)

// networkQuiet is how long no request may be in flight before the network
// counts as idle.
const networkQuiet = 500 * time.Millisecond

// ReadySignal is the condition a check waits for before querying the page.
// Readiness is never inferred from application signals.
type ReadySignal struct {
	kind     readyKind
	delay    time.Duration
	selector string
	js       string
}

// DOMContentLoaded waits for the DOMContentLoaded lifecycle event.
func DOMContentLoaded() ReadySignal { return ReadySignal{kind: readyDOMContentLoaded} }

// Load waits for the window load event.
func Load() ReadySignal { return ReadySignal{kind: readyLoad} }

// NetworkIdle waits until no request has been in flight for a quiet window.
func NetworkIdle() ReadySignal { return ReadySignal{kind: readyNetworkIdle} }

// FixedDelay waits for the load event and then sleeps for d.
//
// Fixed sleeps produce flaky results under load; prefer Selector or
// Condition. Every use is logged as a warning.
func FixedDelay(d time.Duration) ReadySignal { return ReadySignal{kind: readyFixedDelay, delay: d} }

// Selector waits until an element matching sel exists.
func Selector(sel string) ReadySignal { return ReadySignal{kind: readySelector, selector: sel} }

// Condition polls a JS function until it returns a truthy value.
func Condition(js string) ReadySignal { return ReadySignal{kind: readyCondition, js: js} }

func (r ReadySignal) String() string {
	switch r.kind {
	case readyLoad:
		return "load"
	case readyNetworkIdle:
		return "networkIdle"
	case readyFixedDelay:
		return fmt.Sprintf("fixedDelay(%s)", r.delay)
	case readySelector:
		return fmt.Sprintf("selector(%s)", r.selector)
	case readyCondition:
		return "condition"
	default:
		return "domContentLoaded"
	}
}

// arm registers whatever listener the policy needs and returns the function
// that blocks until the page is ready. It MUST be called before Navigate:
// lifecycle and request listeners set up afterwards miss early events and
// return instantly.
//
// hijacked reports whether a request router is mounted; WaitRequestIdle uses
// the Fetch domain and conflicts with it, so the lifecycle networkIdle event
// is used instead.
func (r ReadySignal) arm(p *rod.Page, hijacked bool) func() error {
	ctxErr := func() error { return p.GetContext().Err() }

	switch r.kind {
	case readyLoad:
		wait := p.WaitNavigation(proto.PageLifecycleEventNameLoad)
		return func() error { wait(); return ctxErr() }

	case readyNetworkIdle:
		if hijacked {
			wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
			return func() error { wait(); return ctxErr() }
		}
		wait := p.WaitRequestIdle(networkQuiet, nil, nil, nil)
		return func() error { wait(); return ctxErr() }

	case readyFixedDelay:
		wait := p.WaitNavigation(proto.PageLifecycleEventNameLoad)
		return func() error {
			wait()
			if err := ctxErr(); err != nil {
				return err
			}
			slog.Warn("fixed-delay readiness is unreliable, prefer a selector or condition",
				"delay", r.delay,
			)
			return sleepCtx(p, r.delay)
		}

	case readySelector:
		return func() error {
			_, err := p.Element(r.selector)
			return err
		}

	case readyCondition:
		return func() error {
			return p.Wait(rod.Eval(r.js))
		}

	default:
		wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
		return func() error { wait(); return ctxErr() }
	}
}

// sleepCtx sleeps for d unless the page context ends first.
func sleepCtx(p *rod.Page, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-p.GetContext().Done():
		return p.GetContext().Err()
	}
}
