package models

import "time"

// ConsoleEntry is one console message (or uncaught exception) captured from the page.
type ConsoleEntry struct {
	// Level is the console API type ("log", "warning", "error", ...) or "exception".
	Level string    `json:"level"`
	Text  string    `json:"text"`
	Time  time.Time `json:"time"`
}

// Asset is a stylesheet or script referenced by the rendered page.
type Asset struct {
	// Kind is "stylesheet" or "script".
	Kind string `json:"kind"`
	Href string `json:"href"`

	// Version is the value of the "v" query parameter, empty when absent.
	Version string `json:"version,omitempty"`

	// External is true when the asset is served from another host.
	External bool `json:"external,omitempty"`
}

// CheckReport is the machine-readable rendering of one check run.
type CheckReport struct {
	Check       string                 `json:"check"`
	URL         string                 `json:"url"`
	Passed      bool                   `json:"passed"`
	Values      map[string]interface{} `json:"values,omitempty"`
	Probes      map[string]int         `json:"probes,omitempty"`
	Console     []ConsoleEntry         `json:"console,omitempty"`
	Assets      []Asset                `json:"assets,omitempty"`
	Screenshots []string               `json:"screenshots,omitempty"`
	DurationMs  int64                  `json:"duration_ms"`
	Cleanup     string                 `json:"cleanup_error,omitempty"`
	Error       *ErrorDetail           `json:"error,omitempty"`
}
