// Package serve provides an asset manager that publishes directories in
// place and serves them over HTTP.
//
// Nothing is copied: Publish registers the directory under a signed URL
// segment and the Manager's handler serves files straight from it.
//
//	mgr := serve.New(serve.WithBaseURL("/assets"), serve.WithKey(key))
//	hxasset.SetDefault(hxasset.NewRegistry().SetDefaultManager(mgr))
//	http.Handle("/assets/", http.StripPrefix("/assets", mgr))
package serve

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pthm/hxasset"
	"github.com/pthm/hxasset/lib/token"
)

// DefaultBaseURL is the URL prefix used when WithBaseURL is not given.
const DefaultBaseURL = "/assets"

var _ hxasset.Manager = (*Manager)(nil)

// Manager publishes directories in place.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	baseURL string
	codec   *token.Codec
	logger  *slog.Logger
	byDir   map[string]string // absolute dir -> segment
	dirs    map[uint64]string // entry ID -> absolute dir
}

// Option configures a Manager.
type Option func(*Manager)

// WithBaseURL sets the URL prefix prepended to published segments.
func WithBaseURL(base string) Option {
	return func(m *Manager) {
		m.baseURL = strings.TrimRight(base, "/")
	}
}

// WithKey sets the key used to sign URL segments.
// Without it a fixed development key is used.
func WithKey(key []byte) Option {
	return func(m *Manager) {
		m.codec = token.New(key)
	}
}

// WithLogger sets the logger for publish and serve events.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// New creates a Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		baseURL: DefaultBaseURL,
		byDir:   make(map[string]string),
		dirs:    make(map[uint64]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.codec == nil {
		m.codec = token.New([]byte("hxasset-development-key"))
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// BaseURL returns the URL prefix of published directories.
func (m *Manager) BaseURL() string {
	return m.baseURL
}

// Publish registers dir and returns its public URL.
// The URL depends only on the absolute path, the key and the base URL, so
// publishing the same directory again returns the same URL.
func (m *Manager) Publish(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("serve: resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("serve: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("serve: %s is not a directory", abs)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if seg, ok := m.byDir[abs]; ok {
		return m.baseURL + "/" + seg, nil
	}

	id := dirID(abs)
	for {
		taken, ok := m.dirs[id]
		if !ok || taken == abs {
			break
		}
		id++
	}
	seg, err := m.codec.Encode(token.Entry{Name: filepath.Base(abs), ID: id})
	if err != nil {
		return "", err
	}
	m.byDir[abs] = seg
	m.dirs[id] = abs

	m.logger.Debug("published asset directory", "dir", abs, "url", m.baseURL+"/"+seg)
	return m.baseURL + "/" + seg, nil
}

// dirID derives a stable entry ID from an absolute path, so a directory
// keeps its URL across processes that share a key.
func dirID(abs string) uint64 {
	h := sha256.Sum256([]byte(abs))
	return binary.BigEndian.Uint64(h[:8])
}

// Lookup returns the directory published under segment.
func (m *Manager) Lookup(segment string) (string, bool) {
	e, err := m.codec.Decode(segment)
	if err != nil {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	dir, ok := m.dirs[e.ID]
	return dir, ok
}

// Published returns a snapshot of published directories keyed by URL.
func (m *Manager) Published() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.byDir))
	for dir, seg := range m.byDir {
		out[m.baseURL+"/"+seg] = dir
	}
	return out
}

// ServeHTTP serves a file from a published directory.
// The request path must be "/<segment>/<file>" relative to the base URL;
// mount the manager with http.StripPrefix(BaseURL(), mgr).
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	seg, rest, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	dir, ok := m.Lookup(seg)
	if !ok {
		m.logger.Debug("unknown asset segment", "path", r.URL.Path)
		http.NotFound(w, r)
		return
	}

	// Directory listings are not exposed.
	if rest == "" || strings.HasSuffix(rest, "/") {
		http.NotFound(w, r)
		return
	}

	fsys := os.DirFS(dir)
	info, err := fs.Stat(fsys, rest)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrInvalid) {
			m.logger.Warn("asset stat failed", "dir", dir, "file", rest, "err", err)
		}
		http.NotFound(w, r)
		return
	}

	r2 := r.Clone(r.Context())
	r2.URL.Path = "/" + rest
	http.FileServer(http.FS(fsys)).ServeHTTP(w, r2)
}
