package checks

import (
	"sort"
	"strings"
	"testing"

	"github.com/lendwise/landing/harness"
	"github.com/lendwise/landing/measure"
	"github.com/lendwise/landing/models"
)

func rect(x, y, w, h float64) map[string]interface{} {
	return map[string]interface{}{"x": x, "y": y, "width": w, "height": h}
}

func snap(values map[string]interface{}) *harness.Snapshot {
	return &harness.Snapshot{Values: measure.FromMap(values)}
}

func TestCatalog_ValidAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range All() {
		if seen[c.Name] {
			t.Errorf("duplicate check %q", c.Name)
		}
		seen[c.Name] = true
		if err := c.Validate(); err != nil {
			t.Errorf("check %q does not validate: %v", c.Name, err)
		}
		if c.Description == "" {
			t.Errorf("check %q has no description", c.Name)
		}
	}

	names := Names()
	if len(names) != 7 || !sort.StringsAreSorted(names) {
		t.Errorf("Names() = %v", names)
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("glow-gold")
	if !ok || c.Name != "glow-gold" || !c.DisableCache {
		t.Errorf("Lookup(glow-gold) = %+v, %v", c, ok)
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should miss")
	}
}

func TestButtonAlignment_Predicate(t *testing.T) {
	pred := ButtonAlignment().Predicate

	tests := []struct {
		name    string
		wisrY   float64
		wantErr bool
	}{
		{"aligned", 100, false},
		{"within tolerance", 102, false},
		{"off by four", 104, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snap(map[string]interface{}{
				"filter": rect(10, 100, 80, 30),
				"wisr":   rect(200, tt.wisrY, 80, 30),
				"feed":   rect(400, 100, 80, 30),
			})
			if err := pred(s); (err != nil) != tt.wantErr {
				t.Errorf("predicate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := pred(snap(map[string]interface{}{"filter": rect(0, 0, 1, 1)})); err == nil {
		t.Error("missing rects must fail")
	}
}

func TestButtonOnBorder_Predicate(t *testing.T) {
	pred := ButtonOnBorder().Predicate
	border := rect(0, 500, 1200, 300)

	if err := pred(snap(map[string]interface{}{"border": border, "button": rect(545, 477, 110, 23)})); err != nil {
		t.Errorf("button resting on border: %v", err)
	}
	if err := pred(snap(map[string]interface{}{"border": border, "button": rect(545, 488, 110, 23)})); err == nil {
		t.Error("button overlapping the border by 11px should fail")
	}
}

func TestFilterSingleToggle_Predicate(t *testing.T) {
	pred := FilterSingleToggle().Predicate

	tests := []struct {
		name     string
		clicks   int
		expanded bool
		wantErr  bool
	}{
		{"single toggle", 1, true, false},
		{"double toggle closes again", 1, false, true},
		{"click never landed", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snap(map[string]interface{}{"expanded": tt.expanded})
			s.Probes = map[string]int{"filter-clicks": tt.clicks}
			if err := pred(s); (err != nil) != tt.wantErr {
				t.Errorf("predicate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilterSingleToggle_WaitsForAnimations(t *testing.T) {
	acts := FilterSingleToggle().Interactions
	last := acts[len(acts)-1]
	if last.Type != harness.ActionUntil || !strings.Contains(last.Code, "getAnimations") {
		t.Errorf("last action = %+v, want an until action polling getAnimations", last)
	}
	for _, a := range acts {
		if a.Type == harness.ActionWait && a.Selector == "" {
			t.Errorf("fixed pause %dms in the interaction list", a.Milliseconds)
		}
	}
}

func TestGlowGold_Predicate(t *testing.T) {
	pred := GlowGold().Predicate

	tests := []struct {
		shadow  string
		wantErr bool
	}{
		{"rgba(255, 215, 0, 0.6) 0px 0px 30px 0px, rgba(255, 215, 0, 0.3) 0px 0px 20px 0px", false},
		{"rgb(255, 215, 0) 0px 0px 30px 0px", false},
		{"rgb(0, 255, 150) 0px 0px 30px 0px", true},
		{"none", true},
	}
	for _, tt := range tests {
		if err := pred(snap(map[string]interface{}{"boxShadow": tt.shadow})); (err != nil) != tt.wantErr {
			t.Errorf("predicate(%q) = %v, wantErr %v", tt.shadow, err, tt.wantErr)
		}
	}
}

func TestBorderPath_Predicate(t *testing.T) {
	pred := BorderPath().Predicate

	if err := pred(snap(map[string]interface{}{"d": "M 553 24 L 647 24 Z"})); err != nil {
		t.Errorf("valid path: %v", err)
	}
	for _, d := range []string{"", "   ", "L 1 1"} {
		if err := pred(snap(map[string]interface{}{"d": d})); err == nil {
			t.Errorf("path %q should fail", d)
		}
	}
}

func TestJSErrors_Predicate(t *testing.T) {
	pred := JSErrors().Predicate

	clean := &harness.Snapshot{Console: []models.ConsoleEntry{{Level: "log", Text: "ready"}, {Level: "warning", Text: "deprecated"}}}
	if err := pred(clean); err != nil {
		t.Errorf("logs and warnings should pass: %v", err)
	}

	broken := &harness.Snapshot{Console: []models.ConsoleEntry{{Level: "exception", Text: "ReferenceError: toggleOptions is not defined"}}}
	if err := pred(broken); err == nil {
		t.Error("uncaught exception should fail")
	}
}

func TestCSSVersion_Predicate(t *testing.T) {
	pred := CSSVersion().Predicate

	ok := &harness.Snapshot{Assets: []models.Asset{
		{Kind: "stylesheet", Href: "http://localhost:3005/timeline-clean-test.css?v=20251003142200", Version: "20251003142200"},
		{Kind: "stylesheet", Href: "https://fonts.example.com/css", External: true},
		{Kind: "script", Href: "http://localhost:3005/js/app.js"},
	}}
	if err := pred(ok); err != nil {
		t.Errorf("versioned stylesheet: %v", err)
	}

	unversioned := &harness.Snapshot{Assets: []models.Asset{
		{Kind: "stylesheet", Href: "http://localhost:3005/timeline-clean-test.css?v=1", Version: "1"},
		{Kind: "stylesheet", Href: "http://localhost:3005/extra.css"},
	}}
	if err := pred(unversioned); err == nil {
		t.Error("unversioned local stylesheet should fail")
	}

	if err := pred(&harness.Snapshot{}); err == nil {
		t.Error("missing timeline stylesheet should fail")
	}
}
