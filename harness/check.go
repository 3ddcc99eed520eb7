package harness

import (
	"time"

	"github.com/lendwise/landing/measure"
	"github.com/lendwise/landing/models"
)

// Output selects what a check produces besides the textual report, which is
// always written.
type Output int

const (
	OutputReport Output = iota
	OutputScreenshot
	OutputBoth
)

func (o Output) wantsScreenshot() bool {
	return o == OutputScreenshot || o == OutputBoth
}

// Check describes one verification: a page, a readiness policy, optional
// interactions, an in-page extraction and a predicate over the result.
type Check struct {
	// Name identifies the check in reports and screenshot logs.
	Name string

	// Description is a one-line summary shown by listings.
	Description string

	// URL is absolute, or a path resolved against the configured base URL.
	URL string

	// Ready is the condition awaited after navigation. Default: DOMContentLoaded.
	Ready ReadySignal

	// Interactions run in order once the page is ready.
	Interactions []Action

	// Extract produces the measurement.
	Extract Extract

	// Predicate judges the snapshot. A nil predicate always passes.
	Predicate Predicate

	Output      Output
	Screenshots []Screenshot

	// CaptureConsole records console messages and uncaught exceptions from
	// before navigation starts.
	CaptureConsole bool

	// Probes count DOM events in the page without touching page globals.
	Probes []Probe

	// Viewport overrides the configured viewport when non-zero.
	Viewport Viewport

	// DisableCache bypasses the browser cache and sends Cache-Control: no-cache.
	DisableCache bool

	// BlockResources lists resource types to fail, e.g. "Media", "Font".
	BlockResources []string

	// Stealth masks automation signals before the page loads.
	Stealth bool

	// AuditAssets records the stylesheets and scripts of the rendered page.
	AuditAssets bool
}

// Extract is evaluated in the page after readiness and interactions.
type Extract struct {
	// Script is a JS function returning a plain object, e.g.
	//   () => ({ top: __pagecheck.style('.btn', 'top') })
	Script string

	// Require lists selectors that must resolve before Script runs.
	Require []string
}

// Screenshot is an image written after extraction.
type Screenshot struct {
	// Path is relative to the output directory unless absolute.
	Path string

	// Selector captures a single element instead of the viewport.
	Selector string

	FullPage bool
}

// Probe counts events of type Event whose target is inside Selector.
type Probe struct {
	Name     string
	Selector string
	Event    string
}

// Viewport is the emulated window size.
type Viewport struct {
	Width  int
	Height int
}

// Snapshot is everything a predicate may inspect.
type Snapshot struct {
	Values  measure.Measurement
	Console []models.ConsoleEntry
	Probes  map[string]int
	Assets  []models.Asset
}

// Predicate decides pass or fail. Returning a non-nil error fails the check.
type Predicate func(s *Snapshot) error

// Result is the outcome of one check run.
type Result struct {
	Check       string
	URL         string
	Snapshot    *Snapshot
	Passed      bool
	Screenshots []string
	Duration    time.Duration

	// BrowserPID is the process that served this run; it is gone once Run returns.
	BrowserPID int

	// CleanupErr is set when closing the browser failed. It never fails the check.
	CleanupErr error
}
