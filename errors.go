package hxasset

import "errors"

// Sentinel errors for publishing operations.
var (
	ErrDirectoryNotFound = errors.New("hxasset: asset directory not found")
	ErrManagerNotFound   = errors.New("hxasset: asset manager not found")
	ErrPublishFailed     = errors.New("hxasset: publish failed")
	ErrNoOwner           = errors.New("hxasset: publisher has no owner")
	ErrDuplicateManager  = errors.New("hxasset: duplicate manager name")
)

// Kind classifies a PublishError.
type Kind int

const (
	// KindDirectoryNotFound: the source directory is missing, not a
	// directory, or unreadable.
	KindDirectoryNotFound Kind = iota + 1
	// KindManagerNotFound: the locator returned no manager.
	KindManagerNotFound
	// KindPublishFailed: the manager returned an error.
	KindPublishFailed
)

func (k Kind) String() string {
	switch k {
	case KindDirectoryNotFound:
		return "directory not found"
	case KindManagerNotFound:
		return "manager not found"
	case KindPublishFailed:
		return "publish failed"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindDirectoryNotFound:
		return ErrDirectoryNotFound
	case KindManagerNotFound:
		return ErrManagerNotFound
	case KindPublishFailed:
		return ErrPublishFailed
	}
	return nil
}

// PublishError is returned by Publisher.PublishedURL when publishing fails.
//
// The message is produced through the publisher's Translator, so it may be
// localized. Use errors.Is with the sentinel errors (or IsDirectoryNotFound
// and IsManagerNotFound) to branch on the failure; the fields carry the
// context the message was built from.
type PublishError struct {
	Kind    Kind
	Owner   string // Type name of the owning component
	Dir     string // Source directory at the time of the failure
	Manager string // Manager name; empty when the default manager was used
	Err     error  // Underlying cause, if any

	msg string
}

func (e *PublishError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	if e.Err != nil {
		return "hxasset: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "hxasset: " + e.Kind.String()
}

// Unwrap exposes both the kind's sentinel and the underlying cause.
func (e *PublishError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UsedDefaultManager reports whether the failing call resolved the default
// manager rather than a named one.
func (e *PublishError) UsedDefaultManager() bool {
	return e.Manager == ""
}

// IsDirectoryNotFound checks if err is a missing or unreadable directory error.
func IsDirectoryNotFound(err error) bool {
	return errors.Is(err, ErrDirectoryNotFound)
}

// IsManagerNotFound checks if err is an unresolved manager error.
func IsManagerNotFound(err error) bool {
	return errors.Is(err, ErrManagerNotFound)
}
