// Package measure holds the values a check extracts from a rendered page and
// the geometry helpers used to judge them.
package measure

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ysmood/gson"
)

// ErrMissingKey is returned when a measurement has no value for a key.
var ErrMissingKey = errors.New("measurement key missing")

// Measurement is the plain data snapshot returned by an in-page extraction.
// Its shape differs per check; it is always a JSON object keyed by name.
// The zero value is an empty measurement.
type Measurement struct {
	data gson.JSON
	set  bool
}

// New wraps the JSON value returned by the page.
func New(v gson.JSON) Measurement {
	return Measurement{data: v, set: true}
}

// FromMap builds a Measurement from Go values. Mostly useful in tests.
func FromMap(m map[string]interface{}) Measurement {
	return New(gson.New(m))
}

func (m Measurement) lookup(key string) (gson.JSON, bool) {
	if !m.set {
		return gson.JSON{}, false
	}
	return m.data.Gets(key)
}

// Has reports whether key is present and not null.
func (m Measurement) Has(key string) bool {
	v, ok := m.lookup(key)
	return ok && !v.Nil()
}

func (m Measurement) get(key string) (gson.JSON, error) {
	v, ok := m.lookup(key)
	if !ok || v.Nil() {
		return v, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return v, nil
}

// String returns the value at key exactly as the page produced it.
func (m Measurement) String(key string) (string, error) {
	v, err := m.get(key)
	if err != nil {
		return "", err
	}
	if _, ok := v.Val().(string); !ok {
		return "", fmt.Errorf("measurement %q is %s, not a string", key, v.JSON("", ""))
	}
	return v.Str(), nil
}

// Number returns the numeric value at key.
func (m Measurement) Number(key string) (float64, error) {
	v, err := m.get(key)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(v.Val())
	if !ok {
		return 0, fmt.Errorf("measurement %q is %s, not a number", key, v.JSON("", ""))
	}
	return f, nil
}

// toFloat accepts both decoded page values (json.Number) and Go values.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Bool returns the boolean value at key.
func (m Measurement) Bool(key string) (bool, error) {
	v, err := m.get(key)
	if err != nil {
		return false, err
	}
	if _, ok := v.Val().(bool); !ok {
		return false, fmt.Errorf("measurement %q is %s, not a boolean", key, v.JSON("", ""))
	}
	return v.Bool(), nil
}

// Rect decodes a rectangle stored at key as {x, y, width, height}.
func (m Measurement) Rect(key string) (Rect, error) {
	v, err := m.get(key)
	if err != nil {
		return Rect{}, err
	}
	var r Rect
	for name, dst := range map[string]*float64{
		"x": &r.X, "y": &r.Y, "width": &r.Width, "height": &r.Height,
	} {
		f, ok := v.Gets(name)
		if !ok {
			return Rect{}, fmt.Errorf("measurement %q: rect has no %q", key, name)
		}
		n, ok := toFloat(f.Val())
		if !ok {
			return Rect{}, fmt.Errorf("measurement %q: rect %q is not a number", key, name)
		}
		*dst = n
	}
	return r, nil
}

// Keys returns the top-level keys in sorted order.
func (m Measurement) Keys() []string {
	obj := m.Map()
	if len(obj) == 0 {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Format renders the value at key for a human-readable report. Strings are
// returned verbatim, everything else as compact JSON.
func (m Measurement) Format(key string) string {
	v, ok := m.lookup(key)
	if !ok {
		return "<missing>"
	}
	if s, isStr := v.Val().(string); isStr {
		return s
	}
	return v.JSON("", "")
}

// Map returns the measurement as plain Go values.
func (m Measurement) Map() map[string]interface{} {
	if !m.set {
		return nil
	}
	obj, _ := m.data.Val().(map[string]interface{})
	return obj
}
