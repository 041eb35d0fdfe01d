package hxassetecho

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxasset"
	"github.com/pthm/hxasset/lib/serve"
)

func writeAsset(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "widget")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "widget.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestMount(t *testing.T) {
	e := echo.New()
	mgr := Mount(e, WithoutDefault())

	if mgr == nil {
		t.Fatal("Mount returned nil manager")
	}
	if mgr.BaseURL() != serve.DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", mgr.BaseURL(), serve.DefaultBaseURL)
	}
}

func TestMountWithPath(t *testing.T) {
	e := echo.New()
	mgr := Mount(e, WithPath("/static/"), WithoutDefault())

	if mgr.BaseURL() != "/static" {
		t.Errorf("BaseURL() = %q, want /static", mgr.BaseURL())
	}
}

func TestMountServesPublished(t *testing.T) {
	e := echo.New()
	mgr := Mount(e, WithoutDefault())

	url, err := mgr.Publish(writeAsset(t))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, url+"/widget.js", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "console.log(1)" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMountUnknownSegment(t *testing.T) {
	e := echo.New()
	Mount(e, WithoutDefault())

	req := httptest.NewRequest(http.MethodGet, "/assets/nope.nope/widget.js", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	g := e.Group("/app")
	mgr := MountGroup(g, WithoutDefault(), WithServeOptions(serve.WithBaseURL("/app/assets")))

	url, err := mgr.Publish(writeAsset(t))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !strings.HasPrefix(url, "/app/assets/") {
		t.Fatalf("URL %q should include the group prefix", url)
	}

	req := httptest.NewRequest(http.MethodGet, url+"/widget.js", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMountWithManager(t *testing.T) {
	e := echo.New()
	own := serve.New()
	mgr := Mount(e, WithManager(own), WithoutDefault())

	if mgr != own {
		t.Error("Mount should return the provided manager")
	}
}

func TestMountSetsDefault(t *testing.T) {
	prev := hxasset.DefaultRegistry()
	hxasset.SetDefault(hxasset.NewRegistry())
	t.Cleanup(func() { hxasset.SetDefault(prev) })

	e := echo.New()
	mgr := Mount(e)

	if hxasset.DefaultRegistry().Default() != hxasset.Manager(mgr) {
		t.Error("Mount should install the manager as the default manager")
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	comp := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := w.Write([]byte("<p>hi</p>"))
		return err
	})
	if err := Render(c, comp); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<p>hi</p>")) {
		t.Errorf("body = %q", rec.Body.String())
	}
}
