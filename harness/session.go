package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/lendwise/landing/config"
	"github.com/lendwise/landing/models"
)

// exitTimeout bounds the wait for the browser process to exit after Close.
const exitTimeout = 5 * time.Second

// session is the scoped browser resource of one run: one launched browser
// process and one page. Sessions are never shared between runs.
type session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	pid      int
}

// openSession launches a fresh browser and opens a blank page. On failure
// everything already started is torn down before returning.
func openSession(ctx context.Context, cfg config.BrowserConfig) (*session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("hide-scrollbars"))

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, models.NewCheckError(models.ErrCodeBrowserLaunch, "failed to launch browser", err)
	}
	s := &session{launcher: l, pid: l.PID()}
	slog.Debug("browser launched", "controlURL", controlURL, "pid", s.pid)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		s.kill()
		return nil, models.NewCheckError(models.ErrCodeBrowserLaunch, "failed to connect to browser", err)
	}
	s.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.close()
		return nil, models.NewCheckError(models.ErrCodeBrowserLaunch, "failed to open page", err)
	}
	s.page = page
	return s, nil
}

// setViewport applies the emulated window size.
func (s *session) setViewport(v Viewport) error {
	return s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             v.Width,
		Height:            v.Height,
		DeviceScaleFactor: 1,
	})
}

// close releases the page, the browser connection and the process, in that
// order, and waits for the process to exit. It runs on every exit path of a
// run; its error is reported but never changes a check's outcome.
func (s *session) close() error {
	var errs []error
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if err := s.kill(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return models.NewCheckError(models.ErrCodeCleanupFailure, "browser cleanup incomplete", errors.Join(errs...))
}

// kill terminates the process if it is still alive and removes its profile
// directory.
func (s *session) kill() error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.launcher.Cleanup()
	}()

	select {
	case <-done:
		return nil
	case <-time.After(exitTimeout):
	}

	// The browser ignored the close command; force it.
	s.launcher.Kill()
	select {
	case <-done:
		return nil
	case <-time.After(exitTimeout):
		return fmt.Errorf("browser process %d did not exit", s.pid)
	}
}
