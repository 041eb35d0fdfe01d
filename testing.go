package hxasset

import (
	"path/filepath"
	"sync"
)

// RecordingManager is a Manager for tests. It records every Publish call
// and returns a URL derived from the directory's base name.
//
// Useful for asserting that a publisher publishes exactly once per epoch:
//
//	mgr := hxasset.NewRecordingManager("/pub")
//	reg := hxasset.NewRegistry().SetDefaultManager(mgr)
//	p := hxasset.NewPublisher(dir, hxasset.WithLocator(reg)).Attach(owner)
//	p.PublishedURL()
//	p.PublishedURL()
//	if mgr.Calls() != 1 { ... }
type RecordingManager struct {
	// PublishFunc, when set, replaces the default URL derivation.
	PublishFunc func(dir string) (string, error)

	base string
	mu   sync.Mutex
	dirs []string
}

// NewRecordingManager creates a RecordingManager whose URLs are
// base + "/" + filepath.Base(dir).
func NewRecordingManager(base string) *RecordingManager {
	return &RecordingManager{base: base}
}

// Publish records dir and returns the derived URL (or PublishFunc's result).
func (m *RecordingManager) Publish(dir string) (string, error) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	fn := m.PublishFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(dir)
	}
	return m.base + "/" + filepath.Base(dir), nil
}

// Calls returns the number of Publish calls.
func (m *RecordingManager) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirs)
}

// Published returns the directories passed to Publish, in call order.
func (m *RecordingManager) Published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.dirs))
	copy(out, m.dirs)
	return out
}

// LastPublished returns the most recent directory passed to Publish, or "".
func (m *RecordingManager) LastPublished() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.dirs) == 0 {
		return ""
	}
	return m.dirs[len(m.dirs)-1]
}
