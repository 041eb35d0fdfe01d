package hxasset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync"
)

// Publisher lazily publishes a component's asset directory and caches the
// resulting URL.
//
// A Publisher is held by the component that owns the assets:
//
//	type DatePicker struct {
//	    assets *hxasset.Publisher
//	}
//
//	func NewDatePicker() *DatePicker {
//	    c := &DatePicker{}
//	    c.assets = hxasset.NewPublisher("./assets/datepicker").Attach(c)
//	    return c
//	}
//
// The first call to PublishedURL checks the directory, resolves the manager
// and publishes; later calls return the cached URL. Changing the source
// directory or the manager name starts a new epoch and the next call
// publishes again. Failures are never cached.
//
// A Publisher is safe for concurrent use. Concurrent first callers publish
// at most once per epoch.
type Publisher struct {
	mu          sync.Mutex
	sourceDir   string
	managerName string
	owner       any
	url         string
	cached      bool

	locator     Locator
	translator  Translator
	category    string
	strictOwner bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithManager selects a named manager instead of the default one.
func WithManager(name string) Option {
	return func(p *Publisher) {
		p.managerName = name
	}
}

// WithLocator sets the locator used to resolve managers.
// Without it the package default registry (see SetDefault) is consulted on
// every resolution.
func WithLocator(l Locator) Option {
	return func(p *Publisher) {
		p.locator = l
	}
}

// WithTranslator sets the translator for error messages.
// A nil translator keeps Interpolate.
func WithTranslator(t Translator) Option {
	return func(p *Publisher) {
		if t == nil {
			t = Interpolate
		}
		p.translator = t
	}
}

// WithCategory sets the message category passed to the translator.
func WithCategory(category string) Option {
	return func(p *Publisher) {
		p.category = category
	}
}

// WithStrictOwner makes PublishedURL fail with ErrNoOwner when no owner is
// attached, instead of returning an empty URL.
func WithStrictOwner() Option {
	return func(p *Publisher) {
		p.strictOwner = true
	}
}

// NewPublisher creates a publisher for sourceDir.
// The directory is not checked until the URL is first requested.
func NewPublisher(sourceDir string, opts ...Option) *Publisher {
	p := &Publisher{
		sourceDir:  sourceDir,
		translator: Interpolate,
		category:   DefaultCategory,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attach sets the owner and returns the publisher for chaining.
func (p *Publisher) Attach(owner any) *Publisher {
	p.SetOwner(owner)
	return p
}

// SetOwner sets the owning component. A nil owner, including a typed nil
// pointer, detaches the publisher. The owner only provides context for
// error messages; changing it does not clear the cached URL.
func (p *Publisher) SetOwner(owner any) {
	if isNil(owner) {
		owner = nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.owner = owner
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Owner returns the owning component, or nil.
func (p *Publisher) Owner() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.owner
}

// SetSourceDir sets the directory to publish. If it differs from the
// current one the cached URL is dropped.
func (p *Publisher) SetSourceDir(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dir != p.sourceDir {
		p.sourceDir = dir
		p.resetLocked()
	}
}

// SourceDir returns the directory to publish.
func (p *Publisher) SourceDir() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sourceDir
}

// SetManagerName selects the manager to publish with. An empty name selects
// the default manager. If it differs from the current one the cached URL is
// dropped.
func (p *Publisher) SetManagerName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name != p.managerName {
		p.managerName = name
		p.resetLocked()
	}
}

// ManagerName returns the configured manager name; empty means default.
func (p *Publisher) ManagerName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.managerName
}

// UsesDefaultManager reports whether no manager name is configured.
func (p *Publisher) UsesDefaultManager() bool {
	return p.ManagerName() == ""
}

// ResolveManager returns the manager the publisher would publish with, or
// nil if the locator has none.
func (p *Publisher) ResolveManager() Manager {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolveLocked()
}

// Cached returns the cached URL and whether one is present.
func (p *Publisher) Cached() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, p.cached
}

// Reset drops the cached URL so the next PublishedURL call publishes again.
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

// PublishedURL returns the public URL of the source directory, publishing
// it on first use.
//
// With no owner attached it returns "" and a nil error (or ErrNoOwner under
// WithStrictOwner) without touching the filesystem or the locator.
// Otherwise it fails with a *PublishError when the directory is missing or
// unreadable, when no manager resolves, or when the manager fails.
func (p *Publisher) PublishedURL() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached {
		return p.url, nil
	}
	if p.owner == nil {
		if p.strictOwner {
			return "", ErrNoOwner
		}
		return "", nil
	}

	if err := checkDir(p.sourceDir); err != nil {
		return "", p.fail(KindDirectoryNotFound, MsgDirectoryNotFound, err)
	}

	mgr := p.resolveLocked()
	if mgr == nil {
		msg := MsgNamedManagerNotFound
		if p.managerName == "" {
			msg = MsgSystemManagerNotFound
		}
		return "", p.fail(KindManagerNotFound, msg, nil)
	}

	url, err := mgr.Publish(p.sourceDir)
	if err != nil {
		return "", p.fail(KindPublishFailed, MsgPublishFailed, err)
	}

	p.url = url
	p.cached = true
	return url, nil
}

// MustPublishedURL is like PublishedURL but panics on error.
// Intended for templates where the asset directory is known to exist.
func (p *Publisher) MustPublishedURL() string {
	url, err := p.PublishedURL()
	if err != nil {
		panic(err)
	}
	return url
}

func (p *Publisher) resetLocked() {
	p.url = ""
	p.cached = false
}

func (p *Publisher) resolveLocked() Manager {
	loc := p.locator
	if loc == nil {
		loc = DefaultRegistry()
	}
	if p.managerName == "" {
		return loc.Default()
	}
	return loc.Named(p.managerName)
}

// fail builds a PublishError with a translated message. Must hold p.mu.
func (p *Publisher) fail(kind Kind, msg string, cause error) *PublishError {
	e := &PublishError{
		Kind:    kind,
		Owner:   fmt.Sprintf("%T", p.owner),
		Dir:     p.sourceDir,
		Manager: p.managerName,
		Err:     cause,
	}
	params := map[string]string{
		"{owner}":   e.Owner,
		"{dir}":     e.Dir,
		"{manager}": e.Manager,
	}
	if cause != nil {
		params["{cause}"] = cause.Error()
	}
	e.msg = p.translator.Translate(p.category, msg, params)
	return e
}

// checkDir verifies dir is an existing, readable directory.
func checkDir(dir string) error {
	if dir == "" {
		return errors.New("empty directory path")
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	// Listing catches directories that open but deny reads.
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
