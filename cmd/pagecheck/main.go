// Command pagecheck runs named visual checks against the landing page.
//
//	pagecheck [-list] [name ...]
//
// With no names every check in the catalog runs, one after another, each in
// its own browser. Reports go to stdout, logs to stderr. When
// PAGECHECK_WEBHOOK_URL is set, a signed run summary is posted there.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lendwise/landing/checks"
	"github.com/lendwise/landing/config"
	"github.com/lendwise/landing/harness"
	"github.com/lendwise/landing/models"
	"github.com/lendwise/landing/webhook"
)

const (
	exitOK       = 0
	exitFailed   = 1
	exitBadUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pagecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	list := fs.Bool("list", false, "list available checks and exit")
	if err := fs.Parse(args); err != nil {
		return exitBadUsage
	}

	if *list {
		for _, name := range checks.Names() {
			c, _ := checks.Lookup(name)
			fmt.Fprintf(stdout, "%-22s %s\n", name, c.Description)
		}
		return exitOK
	}

	selected, unknown := selectChecks(fs.Args())
	if len(unknown) > 0 {
		for _, name := range unknown {
			fmt.Fprintf(stderr, "unknown check %q\n", name)
		}
		fmt.Fprintf(stderr, "available: %v\n", checks.Names())
		return exitBadUsage
	}

	cfg := config.LoadCLI()
	config.InitLogger(cfg.Log, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := harness.New(cfg.Browser, cfg.Harness)
	h.SetOutput(stdout)

	summary := &webhook.RunSummary{Total: len(selected)}
	for _, chk := range selected {
		if ctx.Err() != nil {
			slog.Warn("interrupted, skipping remaining checks")
			break
		}
		res, err := h.Run(ctx, chk)
		if models.ExitCode(err) == exitOK {
			summary.Passed++
		}
		summary.Reports = append(summary.Reports, res.ToReport(err))
	}
	passed := summary.Passed

	fmt.Fprintf(stdout, "\n%d/%d checks passed\n", passed, len(selected))

	if cfg.Webhook.URL != "" {
		// Delivery problems are logged; they never change the verdict.
		if err := webhook.DeliverWithRetry(context.Background(), cfg.Webhook.URL, cfg.Webhook.Secret,
			webhook.NewRunEvent(summary), webhook.DefaultDelays); err != nil {
			slog.Error("run summary not delivered", "error", err)
		}
	}
	if passed < len(selected) {
		return exitFailed
	}
	return exitOK
}

// selectChecks resolves names against the catalog; no names means all.
func selectChecks(names []string) (selected []harness.Check, unknown []string) {
	if len(names) == 0 {
		return checks.All(), nil
	}
	for _, name := range names {
		c, ok := checks.Lookup(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, c)
	}
	return selected, unknown
}
