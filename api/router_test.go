package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lendwise/landing/config"
)

const entryHTML = `<!DOCTYPE html><html><head><link rel="stylesheet" href="/styles.css?v=1"></head><body><h1>LendWise</h1></body></html>`

const subHTML = `<!DOCTYPE html><html><body><h1>Sub</h1></body></html>`

func newTestRouter(t *testing.T, root string) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Mode:              "test",
			Root:              root,
			Entry:             "index.html",
			NoCacheExtensions: []string{".html", ".css", ".js"},
		},
	}
	return NewRouter(cfg)
}

func writeSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":      entryHTML,
		"styles.css":      "body { margin: 0; }",
		"app.js":          "console.log('ready');",
		"logo.svg":        `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
		"assets/data.txt": "plain",
		"sub/index.html":  subHTML,
	}
	for name, body := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func assertNoCache(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	want := map[string]string{
		"Cache-Control":     "no-store, no-cache, must-revalidate, proxy-revalidate",
		"Pragma":            "no-cache",
		"Expires":           "0",
		"Surrogate-Control": "no-store",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestRoot_ServesEntryFile(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	w := get(h, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", w.Code)
	}
	if w.Body.String() != entryHTML {
		t.Errorf("GET / body = %q, want entry file contents", w.Body.String())
	}
	assertNoCache(t, w)
}

func TestNoCacheHeaders_ByExtension(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	for _, path := range []string{"/styles.css", "/app.js"} {
		t.Run(path, func(t *testing.T) {
			w := get(h, path)
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s status = %d, want 200", path, w.Code)
			}
			assertNoCache(t, w)
		})
	}
}

func TestExplicitPaths_ServedWithoutRedirect(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	tests := []struct {
		path string
		body string
	}{
		{"/index.html", entryHTML},
		{"/sub/index.html", subHTML},
		{"/assets/data.txt", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(h, tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s status = %d (Location %q), want 200", tt.path, w.Code, w.Header().Get("Location"))
			}
			if w.Body.String() != tt.body {
				t.Errorf("GET %s body = %q, want %q", tt.path, w.Body.String(), tt.body)
			}
		})
	}
}

func TestDirectoryIndex(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	w := get(h, "/sub/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /sub/ status = %d, want 200", w.Code)
	}
	if w.Body.String() != subHTML {
		t.Errorf("GET /sub/ body = %q, want sub/index.html", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	assertNoCache(t, w)

	w = get(h, "/sub?x=1")
	if w.Code != http.StatusMovedPermanently {
		t.Fatalf("GET /sub status = %d, want 301", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/sub/?x=1" {
		t.Errorf("Location = %q, want /sub/?x=1", loc)
	}
}

func TestOtherExtensions_AreCacheable(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	w := get(h, "/logo.svg")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /logo.svg status = %d, want 200", w.Code)
	}
	for _, k := range []string{"Cache-Control", "Pragma", "Expires", "Surrogate-Control"} {
		if got := w.Header().Get(k); got != "" {
			t.Errorf("header %s should be unset for svg, got %q", k, got)
		}
	}
}

func TestNotFound(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "/nope.html"},
		{"directory without index", "/assets/"},
		{"traversal", "/../../etc/passwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(h, tt.path)
			if w.Code != http.StatusNotFound {
				t.Errorf("GET %s status = %d, want 404", tt.path, w.Code)
			}
		})
	}
}

func TestMissingRoot_Returns404(t *testing.T) {
	h := newTestRouter(t, filepath.Join(t.TempDir(), "does-not-exist"))

	for _, path := range []string{"/", "/styles.css"} {
		if w := get(h, path); w.Code != http.StatusNotFound {
			t.Errorf("GET %s with missing root: status = %d, want 404", path, w.Code)
		}
	}
}

func TestHead_ServesHeadersOnly(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/styles.css", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("HEAD status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("HEAD body should be empty, got %d bytes", w.Body.Len())
	}
	assertNoCache(t, w)
}

func TestPostIsNotServed(t *testing.T) {
	h := newTestRouter(t, writeSite(t))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	if w.Code == http.StatusOK {
		t.Errorf("POST / should not be served, got 200")
	}
}
