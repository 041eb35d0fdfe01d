package serve

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm/hxasset"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assetDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "widget")
	if err := os.MkdirAll(filepath.Join(dir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "css", "widget.css"), []byte("body{color:red}"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPublishStableURL(t *testing.T) {
	mgr := New(WithLogger(quietLogger()))
	dir := assetDir(t)

	first, err := mgr.Publish(dir)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	second, err := mgr.Publish(dir)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if first != second {
		t.Errorf("Publish should be stable per directory: %q != %q", first, second)
	}
	if !strings.HasPrefix(first, DefaultBaseURL+"/") {
		t.Errorf("URL %q should start with %q", first, DefaultBaseURL+"/")
	}
}

func TestPublishDistinctDirectories(t *testing.T) {
	mgr := New(WithLogger(quietLogger()))
	a := assetDir(t)
	b := assetDir(t)

	urlA, _ := mgr.Publish(a)
	urlB, _ := mgr.Publish(b)
	if urlA == urlB {
		t.Errorf("different directories should get different URLs, both %q", urlA)
	}
	if len(mgr.Published()) != 2 {
		t.Errorf("Published() has %d entries, want 2", len(mgr.Published()))
	}
}

func TestPublishMissingDirectory(t *testing.T) {
	mgr := New(WithLogger(quietLogger()))

	if _, err := mgr.Publish(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Publish(file); err == nil {
		t.Error("expected error for regular file")
	}
}

func TestWithBaseURL(t *testing.T) {
	mgr := New(WithBaseURL("/static/"), WithLogger(quietLogger()))
	if mgr.BaseURL() != "/static" {
		t.Errorf("BaseURL() = %q, want %q", mgr.BaseURL(), "/static")
	}

	url, err := mgr.Publish(assetDir(t))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !strings.HasPrefix(url, "/static/") {
		t.Errorf("URL %q should start with /static/", url)
	}
}

func TestServeHTTP(t *testing.T) {
	mgr := New(WithKey([]byte("serve-test")), WithLogger(quietLogger()))
	dir := assetDir(t)

	url, err := mgr.Publish(dir)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	seg := strings.TrimPrefix(url, mgr.BaseURL()+"/")

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"file", http.MethodGet, "/" + seg + "/css/widget.css", http.StatusOK, "body{color:red}"},
		{"head", http.MethodHead, "/" + seg + "/css/widget.css", http.StatusOK, ""},
		{"missing file", http.MethodGet, "/" + seg + "/css/missing.css", http.StatusNotFound, ""},
		{"directory", http.MethodGet, "/" + seg + "/css", http.StatusNotFound, ""},
		{"segment root", http.MethodGet, "/" + seg + "/", http.StatusNotFound, ""},
		{"traversal", http.MethodGet, "/" + seg + "/../secret", http.StatusNotFound, ""},
		{"forged segment", http.MethodGet, "/forged.segment/css/widget.css", http.StatusNotFound, ""},
		{"post", http.MethodPost, "/" + seg + "/css/widget.css", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.URL.Path = tt.path
			rec := httptest.NewRecorder()
			mgr.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestSegmentFromOtherKeyRejected(t *testing.T) {
	a := New(WithKey([]byte("key-a")), WithLogger(quietLogger()))
	b := New(WithKey([]byte("key-b")), WithLogger(quietLogger()))
	dir := assetDir(t)

	url, _ := a.Publish(dir)
	if _, err := b.Publish(dir); err != nil {
		t.Fatal(err)
	}

	seg := strings.TrimPrefix(url, a.BaseURL()+"/")
	if _, ok := b.Lookup(seg); ok {
		t.Error("segment signed with another key should not resolve")
	}
	if got, ok := a.Lookup(seg); !ok || got != dir {
		t.Errorf("Lookup(%q) = %q, %v; want %q, true", seg, got, ok, dir)
	}
}

func TestManagerWithPublisher(t *testing.T) {
	mgr := New(WithLogger(quietLogger()))
	reg := hxasset.NewRegistry().SetDefaultManager(mgr)
	dir := assetDir(t)

	p := hxasset.NewPublisher(dir, hxasset.WithLocator(reg)).Attach(t)
	url, err := p.URL("css/widget.css")
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = strings.TrimPrefix(url, mgr.BaseURL())
	rec := httptest.NewRecorder()
	mgr.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "body{color:red}" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestPublishStableAcrossManagers(t *testing.T) {
	dir := assetDir(t)
	a := New(WithKey([]byte("shared")), WithLogger(quietLogger()))
	b := New(WithKey([]byte("shared")), WithLogger(quietLogger()))

	urlA, err := a.Publish(dir)
	if err != nil {
		t.Fatal(err)
	}
	urlB, err := b.Publish(dir)
	if err != nil {
		t.Fatal(err)
	}
	if urlA != urlB {
		t.Errorf("managers sharing a key should agree on URLs: %q != %q", urlA, urlB)
	}

	// a's URL resolves on b without b having seen a's publish order.
	seg := strings.TrimPrefix(urlA, a.BaseURL()+"/")
	if got, ok := b.Lookup(seg); !ok || got != dir {
		t.Errorf("Lookup(%q) = %q, %v", seg, got, ok)
	}
}
