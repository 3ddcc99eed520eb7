package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lendwise/landing/models"
)

func summary(passed, total int) *RunSummary {
	return &RunSummary{
		Passed:  passed,
		Total:   total,
		Reports: []*models.CheckReport{{Check: "glow-gold", Passed: passed == total}},
	}
}

func TestNewRunEvent(t *testing.T) {
	if ev := NewRunEvent(summary(7, 7)); ev.Type != EventRunPassed || !strings.HasPrefix(ev.RunID, "run-") {
		t.Errorf("all passed: %+v", ev)
	}
	if ev := NewRunEvent(summary(6, 7)); ev.Type != EventRunFailed {
		t.Errorf("one failed: type = %s", ev.Type)
	}
}

func TestDeliver_Signed(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	ev := NewRunEvent(summary(1, 1))
	if err := Deliver(context.Background(), srv.URL, "s3cret", ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if gotSig != Sign("s3cret", gotBody) {
		t.Errorf("signature %q does not match body", gotSig)
	}

	var decoded Event
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.RunID != ev.RunID || decoded.Data.Reports[0].Check != "glow-gold" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(SignatureHeader) != "" {
			t.Error("unsigned delivery carried a signature")
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := Deliver(context.Background(), srv.URL, "", NewRunEvent(summary(0, 1))); err == nil {
		t.Error("5xx should be an error")
	}
}

func TestDeliverWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	delays := []time.Duration{0, time.Millisecond, time.Millisecond}
	if err := DeliverWithRetry(context.Background(), srv.URL, "", NewRunEvent(summary(1, 1)), delays); err != nil {
		t.Fatalf("DeliverWithRetry: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}

	calls.Store(-100)
	if err := DeliverWithRetry(context.Background(), srv.URL, "", NewRunEvent(summary(1, 1)), delays[:2]); err == nil {
		t.Error("exhausted retries should return an error")
	}
}

func TestDeliverWithRetry_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := DeliverWithRetry(ctx, "http://127.0.0.1:1", "", NewRunEvent(summary(1, 1)), []time.Duration{time.Hour})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
