package harness

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
)

// hookJS installs window.__pagecheck before any page script runs. It is the
// explicit instrumentation surface extraction scripts use instead of
// monkey-patching page functions:
//
//	__pagecheck.require(sel)     element or throw ELEMENT_NOT_FOUND:<sel>
//	__pagecheck.rect(sel)        {x, y, width, height} of the element
//	__pagecheck.style(sel, prop) computed style value, verbatim
//	__pagecheck.counts           probe name -> events seen
//
// %s receives the JSON probe list.
const hookJS = `(() => {
	if (window.__pagecheck) return;
	const probes = %s;
	const pc = { counts: {} };
	pc.require = (sel) => {
		const el = document.querySelector(sel);
		if (!el) throw new Error('` + missingMarker + `' + sel);
		return el;
	};
	pc.rect = (sel) => {
		const r = pc.require(sel).getBoundingClientRect();
		return { x: r.x, y: r.y, width: r.width, height: r.height };
	};
	pc.style = (sel, prop) => window.getComputedStyle(pc.require(sel)).getPropertyValue(prop);
	for (const p of probes) {
		pc.counts[p.name] = 0;
		document.addEventListener(p.event, (ev) => {
			const t = ev.target;
			if (t && t.closest && t.closest(p.selector)) pc.counts[p.name]++;
		}, true);
	}
	Object.defineProperty(window, '__pagecheck', { value: pc });
})()`

type probeSpec struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
	Event    string `json:"event"`
}

// installHook registers the instrumentation script for every new document.
// Must run before Navigate.
func installHook(page *rod.Page, probes []Probe) error {
	specs := make([]probeSpec, 0, len(probes))
	for _, p := range probes {
		ev := p.Event
		if ev == "" {
			ev = "click"
		}
		specs = append(specs, probeSpec{Name: p.Name, Selector: p.Selector, Event: ev})
	}
	raw, err := json.Marshal(specs)
	if err != nil {
		return fmt.Errorf("marshal probes: %w", err)
	}
	if _, err := page.EvalOnNewDocument(fmt.Sprintf(hookJS, raw)); err != nil {
		return fmt.Errorf("install instrumentation hook: %w", err)
	}
	return nil
}

// readProbes returns the probe counters collected so far.
func readProbes(p *rod.Page) (map[string]int, error) {
	res, err := p.Eval(`() => Object.assign({}, window.__pagecheck ? window.__pagecheck.counts : {})`)
	if err != nil {
		return nil, classifyEvalError(err)
	}
	counts := make(map[string]int)
	for k, v := range res.Value.Map() {
		counts[k] = v.Int()
	}
	return counts, nil
}
