// Package checks is the catalog of named visual checks for the landing page.
package checks

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lendwise/landing/harness"
	"github.com/lendwise/landing/measure"
)

// TimelinePage is the page most checks run against.
const TimelinePage = "/timeline-dev.html"

// Tolerance is the layout slack in CSS pixels for alignment predicates.
const Tolerance = 3.0

// Gold glow colour of the timeline border, as computed styles report it.
const (
	goldGlow  = "rgb(255, 215, 0)"
	goldGlowA = "rgba(255, 215, 0"
	greenGlow = "rgb(0, 255, 150)"
)

// timelineCSS is the stylesheet whose cache-busting version css-version reports.
const timelineCSS = "timeline-clean-test.css"

// All returns every check in catalog order. Each call builds fresh values.
func All() []harness.Check {
	return []harness.Check{
		ButtonAlignment(),
		ButtonOnBorder(),
		FilterSingleToggle(),
		GlowGold(),
		BorderPath(),
		JSErrors(),
		CSSVersion(),
	}
}

// Names returns the catalog names, sorted.
func Names() []string {
	all := All()
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds a check by name.
func Lookup(name string) (harness.Check, bool) {
	for _, c := range All() {
		if c.Name == name {
			return c, true
		}
	}
	return harness.Check{}, false
}

// ButtonAlignment checks that the filter, WISR and feed buttons share a
// vertical center.
func ButtonAlignment() harness.Check {
	return harness.Check{
		Name:        "button-alignment",
		Description: "FILTER, WISR and FEED buttons are vertically aligned",
		URL:         TimelinePage,
		Ready:       harness.Selector(".feed-button-container"),
		Extract: harness.Extract{
			Require: []string{".filter-container", ".wisr-button-container", ".feed-button-container"},
			Script: `() => ({
				filter: __pagecheck.rect('.filter-container'),
				wisr: __pagecheck.rect('.wisr-button-container'),
				feed: __pagecheck.rect('.feed-button-container'),
			})`,
		},
		Predicate:   alignedRow("filter", "wisr", "feed"),
		Output:      harness.OutputBoth,
		Screenshots: []harness.Screenshot{{Path: "button-alignment.png"}},
	}
}

// alignedRow fails unless every named rect shares the first one's vertical
// center within Tolerance.
func alignedRow(keys ...string) harness.Predicate {
	return func(s *harness.Snapshot) error {
		ref, err := s.Values.Rect(keys[0])
		if err != nil {
			return err
		}
		var off []string
		for _, k := range keys[1:] {
			r, err := s.Values.Rect(k)
			if err != nil {
				return err
			}
			if dy, ok := measure.VerticallyAligned(r, ref, Tolerance); !ok {
				off = append(off, fmt.Sprintf("%s is %.1fpx off %s", k, dy, keys[0]))
			}
		}
		if len(off) > 0 {
			return errors.New(strings.Join(off, "; "))
		}
		return nil
	}
}

// ButtonOnBorder checks that the bottom of the filter button sits on the top
// border line of the timeline.
func ButtonOnBorder() harness.Check {
	return harness.Check{
		Name:        "button-on-border",
		Description: "filter button bottom rests on the timeline top border",
		URL:         TimelinePage,
		Ready:       harness.Selector(".new-filter-btn"),
		Extract: harness.Extract{
			Script: `() => ({
				border: __pagecheck.rect('.timeline-border-container'),
				button: __pagecheck.rect('.new-filter-btn'),
				cssTop: __pagecheck.style('.new-filter-btn', 'top'),
			})`,
		},
		Predicate: func(s *harness.Snapshot) error {
			border, err := s.Values.Rect("border")
			if err != nil {
				return err
			}
			btn, err := s.Values.Rect("button")
			if err != nil {
				return err
			}
			if !measure.Within(btn.Bottom(), border.Top(), Tolerance) {
				return fmt.Errorf("button bottom %.1f is %.1fpx from border top %.1f",
					btn.Bottom(), btn.Bottom()-border.Top(), border.Top())
			}
			return nil
		},
		Output:      harness.OutputBoth,
		Screenshots: []harness.Screenshot{{Path: "bottom-on-border.png", Selector: ".timeline-border-container"}},
	}
}

// filterSettled is true once no finite animation or transition is running
// inside the filter container. Looping effects never finish and are ignored.
const filterSettled = `() => __pagecheck.require('#new-filter-container')
	.getAnimations({subtree: true})
	.filter(a => a.effect && a.effect.getComputedTiming().endTime !== Infinity)
	.length === 0`

// FilterSingleToggle clicks the main filter button once and expects exactly
// one click to reach it and the container to end up expanded. A handler
// bound twice toggles the container back closed.
func FilterSingleToggle() harness.Check {
	return harness.Check{
		Name:         "filter-single-toggle",
		Description:  "one click on the filter button expands the filter exactly once",
		URL:          TimelinePage,
		Ready:        harness.Selector("#main-filter-btn"),
		Probes:       []harness.Probe{{Name: "filter-clicks", Selector: "#main-filter-btn"}},
		Interactions: []harness.Action{harness.Click("#main-filter-btn"), harness.WaitUntil(filterSettled)},
		Extract: harness.Extract{
			Script: `() => ({
				expanded: __pagecheck.require('#new-filter-container').classList.contains('filter-expanded'),
			})`,
		},
		Predicate: func(s *harness.Snapshot) error {
			if n := s.Probes["filter-clicks"]; n != 1 {
				return fmt.Errorf("filter button received %d clicks, want 1", n)
			}
			expanded, err := s.Values.Bool("expanded")
			if err != nil {
				return err
			}
			if !expanded {
				return errors.New("filter container is not expanded after one click")
			}
			return nil
		},
	}
}

// GlowGold checks the timeline border glow is gold, with the cache disabled
// so a stale stylesheet cannot pass.
func GlowGold() harness.Check {
	return harness.Check{
		Name:         "glow-gold",
		Description:  "timeline border has the gold glow, not the old green one",
		URL:          TimelinePage,
		Ready:        harness.NetworkIdle(),
		DisableCache: true,
		AuditAssets:  true,
		// A streaming video keeps requests in flight and the network never idles.
		BlockResources: []string{"Media"},
		Extract: harness.Extract{
			Script: `() => ({ boxShadow: __pagecheck.style('.timeline-border-container', 'box-shadow') })`,
		},
		Predicate: func(s *harness.Snapshot) error {
			shadow, err := s.Values.String("boxShadow")
			if err != nil {
				return err
			}
			if strings.Contains(shadow, greenGlow) {
				return fmt.Errorf("green glow still present (stale CSS?): %s", shadow)
			}
			if !strings.Contains(shadow, goldGlow) && !strings.Contains(shadow, goldGlowA) {
				return fmt.Errorf("no gold glow in box-shadow: %s", shadow)
			}
			return nil
		},
		Output:      harness.OutputBoth,
		Screenshots: []harness.Screenshot{{Path: "glow-final.png", Selector: ".timeline-border-container"}},
	}
}

// BorderPath checks the drawn timeline border path exists and is a path.
func BorderPath() harness.Check {
	return harness.Check{
		Name:        "border-path",
		Description: "timeline border SVG path is drawn",
		URL:         TimelinePage,
		Ready:       harness.Load(),
		Extract: harness.Extract{
			Script: `() => ({ d: __pagecheck.require('#border-path').getAttribute('d') || '' })`,
		},
		Predicate: func(s *harness.Snapshot) error {
			d, err := s.Values.String("d")
			if err != nil {
				return err
			}
			d = strings.TrimSpace(d)
			if d == "" {
				return errors.New("border path has no d attribute")
			}
			if d[0] != 'M' && d[0] != 'm' {
				return fmt.Errorf("border path does not start with a moveto: %.40s", d)
			}
			return nil
		},
	}
}

// JSErrors fails on any uncaught exception or console.error during load.
func JSErrors() harness.Check {
	return harness.Check{
		Name:           "js-errors",
		Description:    "page loads without uncaught exceptions or console errors",
		URL:            TimelinePage,
		Ready:          harness.Load(),
		CaptureConsole: true,
		Extract:        harness.Extract{Script: `() => ({ title: document.title })`},
		Predicate: func(s *harness.Snapshot) error {
			var bad []string
			for _, e := range s.Console {
				if e.Level == "exception" || e.Level == "error" {
					bad = append(bad, e.Text)
				}
			}
			if len(bad) > 0 {
				return fmt.Errorf("%d JavaScript error(s): %s", len(bad), strings.Join(bad, " | "))
			}
			return nil
		},
	}
}

// CSSVersion checks every local stylesheet is cache-busted and that the
// timeline stylesheet is loaded.
func CSSVersion() harness.Check {
	return harness.Check{
		Name:         "css-version",
		Description:  "local stylesheets carry a ?v= cache-busting version",
		URL:          TimelinePage,
		Ready:        harness.DOMContentLoaded(),
		DisableCache: true,
		AuditAssets:  true,
		Extract:      harness.Extract{Script: `() => ({ stylesheets: document.styleSheets.length })`},
		Predicate: func(s *harness.Snapshot) error {
			found := false
			var unversioned []string
			for _, a := range s.Assets {
				if a.Kind != "stylesheet" || a.External {
					continue
				}
				if strings.Contains(a.Href, timelineCSS) {
					found = true
				}
				if a.Version == "" {
					unversioned = append(unversioned, a.Href)
				}
			}
			if !found {
				return fmt.Errorf("%s is not linked", timelineCSS)
			}
			if len(unversioned) > 0 {
				return fmt.Errorf("stylesheets without ?v=: %s", strings.Join(unversioned, ", "))
			}
			return nil
		},
	}
}
