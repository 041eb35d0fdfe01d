package hxasset

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the asset managers available to publishers.
//
// It implements Locator: Default returns the system manager set with
// SetDefaultManager, Named returns a manager registered with Add or
// Register. A Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	def      Manager
	managers map[string]Manager
}

// NewRegistry creates an empty registry with no default manager.
func NewRegistry() *Registry {
	return &Registry{
		managers: make(map[string]Manager),
	}
}

// Add registers named managers.
// Panics on an empty name, a nil manager or a name collision; use Register
// for an error-returning variant.
func (reg *Registry) Add(name string, mgr Manager) *Registry {
	if err := reg.Register(name, mgr); err != nil {
		panic(err.Error())
	}
	return reg
}

// Register adds a named manager.
// Returns ErrDuplicateManager if name is already taken.
func (reg *Registry) Register(name string, mgr Manager) error {
	if name == "" {
		return fmt.Errorf("hxasset: manager name cannot be empty")
	}
	if mgr == nil {
		return fmt.Errorf("hxasset: nil manager for %q", name)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.managers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateManager, name)
	}
	reg.managers[name] = mgr
	return nil
}

// SetDefaultManager sets the system manager returned by Default.
// Passing nil removes it.
func (reg *Registry) SetDefaultManager(mgr Manager) *Registry {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.def = mgr
	return reg
}

// Default returns the system manager, or nil if none is set.
func (reg *Registry) Default() Manager {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.def
}

// Named returns the manager registered under name, or nil.
func (reg *Registry) Named(name string) Manager {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.managers[name]
}

// Names returns the registered manager names in sorted order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := make([]string, 0, len(reg.managers))
	for name := range reg.managers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultMu  sync.RWMutex
	defaultReg = NewRegistry()
)

// SetDefault replaces the package-level registry used by publishers that
// were created without WithLocator.
//
//	reg := hxasset.NewRegistry().SetDefaultManager(mgr)
//	hxasset.SetDefault(reg)
func SetDefault(reg *Registry) {
	if reg == nil {
		panic("hxasset: SetDefault called with nil registry")
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = reg
}

// DefaultRegistry returns the package-level registry.
func DefaultRegistry() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultReg
}
