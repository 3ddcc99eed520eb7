// Package harness runs visual verification checks against a rendered page.
//
// Every Run launches its own browser, waits for an explicit readiness
// signal, performs the check's interactions, extracts a measurement in the
// page, judges it with the check's predicate and prints a textual report.
// The browser is closed on every exit path before Run returns.
package harness

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
	"github.com/lendwise/landing/config"
	"github.com/lendwise/landing/measure"
	"github.com/lendwise/landing/models"
)

// Harness holds the configuration shared by all runs. It keeps no browser
// between runs and is safe for concurrent use, though runs are meant to be
// sequential.
type Harness struct {
	browserCfg config.BrowserConfig
	cfg        config.HarnessConfig
	out        io.Writer
}

// New creates a Harness that writes reports to stdout.
func New(browserCfg config.BrowserConfig, cfg config.HarnessConfig) *Harness {
	return &Harness{browserCfg: browserCfg, cfg: cfg, out: os.Stdout}
}

// SetOutput redirects the textual reports. A nil writer discards them.
func (h *Harness) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	h.out = w
}

// Run executes one check.
//
// The returned Result is never nil; on failure it holds whatever was
// measured before the failing step. The error is a *models.CheckError.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Validate             – selectors and actions, before any browser starts
//  2. Launch               – fresh browser + page for this run only
//  3. DEFER: cleanup       – close page, browser, process; then print report
//  4. Page setup           – viewport, stealth, hook, cache, hijack
//  5. Console listener     – MUST be attached before Navigate
//  6. Arm readiness        – MUST be armed before Navigate
//  7. Navigate + wait      – bounded by ReadyTimeout
//  8. Interactions         – each with its own timeout
//  9. Extract              – required selectors, then the extraction script
//  10. Collect             – probes, assets, console (flushed)
//  11. Screenshots
//  12. Predicate
func (h *Harness) Run(ctx context.Context, chk Check) (res *Result, err error) {
	start := time.Now()
	res = &Result{Check: chk.Name, URL: chk.URL}

	ctx, cancel := withOptionalTimeout(ctx, h.cfg.RunTimeout)
	defer cancel()

	// ── 1. Validate ─────────────────────────────────────────────────
	target, err := resolveURL(h.cfg.BaseURL, chk.URL)
	if err != nil {
		return h.finish(res, start, err)
	}
	res.URL = target
	if err := validate(&chk); err != nil {
		return h.finish(res, start, err)
	}

	log := slog.With("check", chk.Name, "url", target)
	log.Debug("check starting", "ready", chk.Ready.String())

	// ── 2. Launch ───────────────────────────────────────────────────
	sess, err := openSession(ctx, h.browserCfg)
	if err != nil {
		return h.finish(res, start, err)
	}
	res.BrowserPID = sess.pid

	// ── 3. CRITICAL DEFER: the browser never outlives Run ───────────
	var rec *consoleRecorder
	var router *rod.HijackRouter
	defer func() {
		if rec != nil {
			rec.stop()
		}
		if router != nil {
			_ = router.Stop()
		}
		if cerr := sess.close(); cerr != nil {
			log.Warn("browser cleanup failed", "error", cerr)
			res.CleanupErr = cerr
		}
		res, err = h.finish(res, start, err)
	}()

	page := sess.page

	// ── 4. Page setup ───────────────────────────────────────────────
	vp := chk.Viewport
	if vp.Width == 0 || vp.Height == 0 {
		vp = Viewport{Width: h.browserCfg.ViewportWidth, Height: h.browserCfg.ViewportHeight}
	}
	if vp.Width > 0 && vp.Height > 0 {
		if verr := sess.setViewport(vp); verr != nil {
			log.Warn("viewport not applied", "error", verr)
		}
	}
	if chk.Stealth {
		if _, serr := page.EvalOnNewDocument(stealth.JS); serr != nil {
			log.Warn("stealth injection failed, proceeding without stealth", "error", serr)
		}
	}
	if herr := installHook(page, chk.Probes); herr != nil {
		return res, models.NewCheckError(models.ErrCodeEvalFailed, "instrumentation unavailable", herr)
	}
	if chk.DisableCache {
		if derr := disableCache(page); derr != nil {
			log.Warn("cache not disabled", "error", derr)
		}
	}
	router = setupHijack(page, chk.BlockResources)

	// ── 5. Console listener BEFORE navigation ───────────────────────
	if chk.CaptureConsole {
		rec = startConsole(ctx, page)
	}

	// ── 6-7. Arm readiness, navigate, wait ──────────────────────────
	readyCtx, readyCancel := withOptionalTimeout(ctx, h.cfg.ReadyTimeout)
	defer readyCancel()
	rp := page.Context(readyCtx)

	wait := chk.Ready.arm(rp, router != nil)
	if nerr := rp.Navigate(target); nerr != nil {
		return res, categorizeError(nerr, "navigation failed")
	}
	if werr := wait(); werr != nil {
		return res, categorizeError(werr, "page did not reach "+chk.Ready.String())
	}
	log.Debug("page ready")

	p := page.Context(ctx)

	// ── 8. Interactions ─────────────────────────────────────────────
	if len(chk.Interactions) > 0 {
		if aerr := executeActions(ctx, page, chk.Interactions, h.cfg.ActionTimeout); aerr != nil {
			return res, aerr
		}
	}

	// ── 9. Extract ──────────────────────────────────────────────────
	snap := &Snapshot{}
	res.Snapshot = snap

	for _, sel := range chk.Extract.Require {
		found, qerr := p.Eval(`(s) => document.querySelector(s) !== null`, sel)
		if qerr != nil {
			return res, classifyEvalError(qerr)
		}
		if !found.Value.Bool() {
			return res, models.NewCheckError(models.ErrCodeElementNotFound, sel+" not found", nil)
		}
	}

	obj, eerr := p.Eval(chk.Extract.Script)
	if eerr != nil {
		return res, classifyEvalError(eerr)
	}
	snap.Values = measure.New(obj.Value)

	// ── 10. Collect ─────────────────────────────────────────────────
	if len(chk.Probes) > 0 {
		counts, perr := readProbes(p)
		if perr != nil {
			return res, perr
		}
		snap.Probes = counts
	}
	if chk.AuditAssets {
		rawHTML, herr := p.HTML()
		if herr != nil {
			return res, models.NewCheckError(models.ErrCodeEvalFailed, "read page HTML", herr)
		}
		assets, aerr := AuditAssets(rawHTML, target)
		if aerr != nil {
			return res, models.NewCheckError(models.ErrCodeEvalFailed, "parse page HTML", aerr)
		}
		snap.Assets = assets
	}
	if rec != nil {
		snap.Console = rec.finish(p)
		rec = nil
	}

	// ── 11. Screenshots ─────────────────────────────────────────────
	if chk.Output.wantsScreenshot() {
		paths, serr := takeScreenshots(p, chk.Screenshots, h.cfg.OutputDir)
		res.Screenshots = paths
		if serr != nil {
			return res, serr
		}
	}

	// ── 12. Predicate ───────────────────────────────────────────────
	if chk.Predicate != nil {
		if perr := chk.Predicate(snap); perr != nil {
			return res, assertionError(perr)
		}
	}
	res.Passed = true
	return res, nil
}

// finish stamps the duration, prints the report and normalizes the error.
func (h *Harness) finish(res *Result, start time.Time, err error) (*Result, error) {
	res.Duration = time.Since(start)
	if err != nil {
		res.Passed = false
	}
	WriteReport(h.out, res, err)
	return res, err
}
