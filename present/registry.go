package present

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Config carries the settings a presenter factory may use.
type Config struct {
	// Output receives presenter output. Backends that need it fail
	// without it.
	Output io.Writer
	// Profile names a terminal colour profile: "truecolor", "ansi256",
	// "ansi", "ascii", or "" to detect it from Output.
	Profile string
}

// Factory creates a presenter from a Config.
type Factory func(cfg Config) (Presenter, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a presenter backend available by name. It panics if
// factory is nil or name is already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("present: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("present: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a backend. It is a no-op for unknown names.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// New creates a presenter by backend name.
func New(name string, cfg Config) (Presenter, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("present: unknown backend %q", name)
	}
	return factory(cfg)
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is a registered backend.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

func init() {
	Register("ansi", func(cfg Config) (Presenter, error) {
		if cfg.Output == nil {
			return nil, fmt.Errorf("present: ansi backend needs an output")
		}
		profile, err := ParseProfile(cfg.Profile)
		if err != nil {
			return nil, err
		}
		return NewANSI(cfg.Output, profile), nil
	})
	Register("snapshot", func(cfg Config) (Presenter, error) {
		return NewSnapshot(cfg.Output), nil
	})
	Register("discard", func(Config) (Presenter, error) {
		return &Discard{}, nil
	})
}
