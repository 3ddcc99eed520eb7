package harness

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/lendwise/landing/models"
)

// WriteReport prints the human-readable report of one run: raw extracted
// values, probes, console lines, screenshots and a final PASS/FAIL line.
// String values are printed verbatim.
func WriteReport(w io.Writer, res *Result, runErr error) {
	fmt.Fprintf(w, "=== %s (%s)\n", res.Check, res.URL)

	if s := res.Snapshot; s != nil {
		if keys := s.Values.Keys(); len(keys) > 0 {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(tw, "  %s:\t%s\n", k, s.Values.Format(k))
			}
			tw.Flush()
		}
		if len(s.Probes) > 0 {
			names := make([]string, 0, len(s.Probes))
			for n := range s.Probes {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				fmt.Fprintf(w, "  probe %s: %d\n", n, s.Probes[n])
			}
		}
		for _, a := range s.Assets {
			v := a.Version
			if v == "" {
				v = "-"
			}
			fmt.Fprintf(w, "  %s %s (v=%s)\n", a.Kind, a.Href, v)
		}
		if len(s.Console) > 0 {
			fmt.Fprintf(w, "  console (%d):\n", len(s.Console))
			for _, e := range s.Console {
				fmt.Fprintf(w, "    [%s] %s\n", e.Level, e.Text)
			}
		}
	}

	for _, p := range res.Screenshots {
		fmt.Fprintf(w, "  screenshot: %s\n", p)
	}
	if res.CleanupErr != nil {
		fmt.Fprintf(w, "  warning: %v\n", res.CleanupErr)
	}

	dur := res.Duration.Round(time.Millisecond)
	if runErr == nil && res.Passed {
		fmt.Fprintf(w, "PASS %s (%s)\n", res.Check, dur)
		return
	}
	fmt.Fprintf(w, "FAIL %s (%s): %v\n", res.Check, dur, runErr)
}

// ToReport renders a result as a machine-readable CheckReport.
func (r *Result) ToReport(runErr error) *models.CheckReport {
	rep := &models.CheckReport{
		Check:       r.Check,
		URL:         r.URL,
		Passed:      r.Passed && runErr == nil,
		Screenshots: r.Screenshots,
		DurationMs:  r.Duration.Milliseconds(),
	}
	if s := r.Snapshot; s != nil {
		rep.Values = s.Values.Map()
		rep.Probes = s.Probes
		rep.Console = s.Console
		rep.Assets = s.Assets
	}
	if r.CleanupErr != nil {
		rep.Cleanup = r.CleanupErr.Error()
	}
	if runErr != nil {
		var ce *models.CheckError
		if errors.As(runErr, &ce) {
			rep.Error = ce.ToDetail()
		} else {
			rep.Error = &models.ErrorDetail{Code: models.ErrCodeEvalFailed, Message: runErr.Error()}
		}
	}
	return rep
}
