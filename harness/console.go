package harness

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/lendwise/landing/models"
)

// flushSentinel is logged by the harness itself to mark the end of the
// stream; CDP delivers events in order, so once it arrives every earlier
// message has been recorded.
const flushSentinel = "__pagecheck:flush"

// flushTimeout bounds the wait for the sentinel.
const flushTimeout = 2 * time.Second

// consoleRecorder collects console messages and uncaught exceptions in
// arrival order.
type consoleRecorder struct {
	mu      sync.Mutex
	entries []models.ConsoleEntry
	cancel  context.CancelFunc
	done    chan struct{}
}

// startConsole subscribes to console and exception events. It MUST be called
// before Navigate, otherwise messages logged during parsing are lost.
func startConsole(ctx context.Context, page *rod.Page) *consoleRecorder {
	ctx, cancel := context.WithCancel(ctx)
	rec := &consoleRecorder{cancel: cancel, done: make(chan struct{})}

	wait := page.Context(ctx).EachEvent(
		func(ev *proto.RuntimeConsoleAPICalled) bool {
			text := stringifyConsoleArgs(ev.Args)
			if text == flushSentinel {
				return true
			}
			rec.add(string(ev.Type), text)
			return false
		},
		func(ev *proto.RuntimeExceptionThrown) {
			text := ev.ExceptionDetails.Text
			if ev.ExceptionDetails.Exception != nil && ev.ExceptionDetails.Exception.Description != "" {
				text = ev.ExceptionDetails.Exception.Description
			}
			rec.add("exception", text)
		},
	)

	go func() {
		defer close(rec.done)
		wait()
	}()
	return rec
}

func (r *consoleRecorder) add(level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, models.ConsoleEntry{Level: level, Text: text, Time: time.Now()})
}

// finish drains pending events up to the sentinel, stops the subscription
// and returns everything recorded.
func (r *consoleRecorder) finish(p *rod.Page) []models.ConsoleEntry {
	if _, err := p.Eval(`(s) => console.debug(s)`, flushSentinel); err == nil {
		select {
		case <-r.done:
		case <-time.After(flushTimeout):
		}
	}
	r.stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ConsoleEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// stop ends the subscription and waits for the listener goroutine.
func (r *consoleRecorder) stop() {
	r.cancel()
	<-r.done
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			if s, ok := a.Value.Val().(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, a.Value.JSON("", ""))
			}
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}
