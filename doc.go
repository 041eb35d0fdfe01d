// Package hxasset publishes the static assets bundled with server-rendered
// components and caches the public URL they are served from.
//
// A component that ships CSS, JavaScript or images keeps them in a local
// directory. Before a template can reference them, the directory has to be
// made reachable over HTTP by an asset manager. hxasset does this lazily:
// nothing happens until the URL is first requested, and the result is cached
// for as long as the configuration stays the same.
//
// # Publishers
//
// A Publisher is held by the component that owns the assets:
//
//	type DatePicker struct {
//	    assets *hxasset.Publisher
//	}
//
//	func New() *DatePicker {
//	    c := &DatePicker{}
//	    c.assets = hxasset.NewPublisher("./assets/datepicker").Attach(c)
//	    return c
//	}
//
// The owner is only used to name the component in error messages. A
// publisher without an owner returns an empty URL instead of publishing
// (see WithStrictOwner to turn that into an error).
//
// # Managers and Registries
//
// Publishing itself is delegated to a Manager. Managers are resolved through
// a Locator, normally a Registry:
//
//	reg := hxasset.NewRegistry().
//	    SetDefaultManager(local).
//	    Add("cdn", cdn)
//	hxasset.SetDefault(reg)
//
// A publisher with no manager name uses the registry's default manager;
// WithManager or SetManagerName selects a named one. The serve package
// provides a Manager that serves directories in place.
//
// # Caching
//
// The cached URL belongs to the current source directory and manager name.
// Changing either drops it and the next request publishes again. Failures
// are never cached: every call retries the directory check and resolution
// until one succeeds. Concurrent first requests publish only once.
//
// # Templates
//
// Stylesheet and Script render asset tags from templ templates:
//
//	@hxasset.Stylesheet(c.assets, "datepicker.css")
//	@hxasset.Script(c.assets, "datepicker.js")
//
// # Errors
//
// Failures are returned as *PublishError values that match
// ErrDirectoryNotFound, ErrManagerNotFound or ErrPublishFailed with
// errors.Is. Messages go through a Translator so applications can localize
// them.
package hxasset
