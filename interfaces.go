package hxasset

// Manager publishes a local directory and returns the public URL it is
// reachable at.
//
// Publish receives a directory that existed and was readable when the
// Publisher checked it. Implementations should be deterministic per
// directory: publishing the same directory twice within a run returns the
// same URL.
//
// The manager owns the actual publishing strategy (copying, linking, serving
// in place). See the serve package for an implementation that serves
// directories in place over HTTP.
type Manager interface {
	Publish(dir string) (string, error)
}

// ManagerFunc adapts a plain function to the Manager interface.
//
//	mgr := hxasset.ManagerFunc(func(dir string) (string, error) {
//	    return "/static/" + filepath.Base(dir), nil
//	})
type ManagerFunc func(dir string) (string, error)

// Publish calls f(dir).
func (f ManagerFunc) Publish(dir string) (string, error) {
	return f(dir)
}

// Locator resolves asset managers.
//
// Default returns the system manager used when a Publisher has no manager
// name configured. Named returns the manager registered under name. Both
// return nil when nothing is available; the Publisher turns that into an
// ErrManagerNotFound error.
//
// Registry is the standard implementation.
type Locator interface {
	Default() Manager
	Named(name string) Manager
}
