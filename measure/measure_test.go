package measure

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ysmood/gson"
)

func TestWithin(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		tol  float64
		want bool
	}{
		{"inside tolerance", 100.0, 102.0, 3, true},
		{"outside tolerance", 100.0, 104.0, 3, false},
		{"exact boundary", 100.0, 103.0, 3, true},
		{"negative direction", 104.0, 100.0, 3, false},
		{"sub-pixel noise", 57.5, 57.25, 0.5, true},
		{"zero tolerance", 10, 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Within(tt.a, tt.b, tt.tol); got != tt.want {
				t.Errorf("Within(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.tol, got, tt.want)
			}
		})
	}
}

func TestVerticallyAligned(t *testing.T) {
	button := Rect{X: 10, Y: 90, Width: 40, Height: 20} // center y = 100
	near := Rect{X: 300, Y: 92, Width: 80, Height: 20}  // center y = 102
	far := Rect{X: 300, Y: 94, Width: 80, Height: 20}   // center y = 104

	if dy, ok := VerticallyAligned(button, near, 3); !ok {
		t.Errorf("centers 100 and 102 should align at 3px, dy=%v", dy)
	}
	if dy, ok := VerticallyAligned(button, far, 3); ok {
		t.Errorf("centers 100 and 104 should not align at 3px, dy=%v", dy)
	}
}

func TestCentersAligned(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 20}
	b := Rect{X: 2, Y: -1, Width: 100, Height: 20}

	off, ok := CentersAligned(a, b, 3)
	if !ok {
		t.Fatalf("expected alignment, offset %+v", off)
	}
	if off.DX != -2 || off.DY != 1 {
		t.Errorf("offset = %+v, want {DX:-2 DY:1}", off)
	}
}

func TestRect_Edges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 110, Height: 23}
	if r.Bottom() != 43 || r.Right() != 120 {
		t.Errorf("Bottom/Right = %v/%v, want 43/120", r.Bottom(), r.Right())
	}
	if c := r.Center(); c.X != 65 || c.Y != 31.5 {
		t.Errorf("Center = %+v, want {65 31.5}", c)
	}
}

func TestMeasurement_FromPageJSON(t *testing.T) {
	m := New(gson.NewFrom(`{
		"top": "42px",
		"expanded": true,
		"count": 1,
		"btn": {"x": 10, "y": 90, "width": 40, "height": 20},
		"missing": null
	}`))

	top, err := m.String("top")
	if err != nil || top != "42px" {
		t.Errorf("String(top) = %q, %v; want 42px", top, err)
	}

	expanded, err := m.Bool("expanded")
	if err != nil || !expanded {
		t.Errorf("Bool(expanded) = %v, %v; want true", expanded, err)
	}

	count, err := m.Number("count")
	if err != nil || count != 1 {
		t.Errorf("Number(count) = %v, %v; want 1", count, err)
	}

	r, err := m.Rect("btn")
	if err != nil {
		t.Fatalf("Rect(btn): %v", err)
	}
	if r != (Rect{X: 10, Y: 90, Width: 40, Height: 20}) {
		t.Errorf("Rect(btn) = %+v", r)
	}

	if m.Has("missing") {
		t.Error("null values should not count as present")
	}
	if _, err := m.String("missing"); !errors.Is(err, ErrMissingKey) {
		t.Errorf("String(missing) error = %v, want ErrMissingKey", err)
	}
	if _, err := m.Number("top"); err == nil {
		t.Error("Number on a string value should fail")
	}
}

func TestMeasurement_KeysAndFormat(t *testing.T) {
	m := FromMap(map[string]interface{}{
		"boxShadow": "rgb(255, 215, 0) 0px 0px 20px 0px",
		"alpha":     0.5,
		"ok":        false,
	})

	if got, want := m.Keys(), []string{"alpha", "boxShadow", "ok"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := m.Format("boxShadow"); got != "rgb(255, 215, 0) 0px 0px 20px 0px" {
		t.Errorf("Format should return strings verbatim, got %q", got)
	}
	if got := m.Format("ok"); got != "false" {
		t.Errorf("Format(ok) = %q, want false", got)
	}
	if got := m.Format("nope"); got != "<missing>" {
		t.Errorf("Format(nope) = %q, want <missing>", got)
	}
}
