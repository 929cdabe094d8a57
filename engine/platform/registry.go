package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hubastard/handmade/engine/core"
	"github.com/hubastard/handmade/engine/input"
)

var ErrUnknownBackend = errors.New("platform: unknown backend")

// Backend is an opened window host plus the controller source that goes
// with it.
type Backend struct {
	Name string
	Host core.Host
	Pads input.Source
}

// Factory opens a backend. It must not show anything; a returned error is a
// fatal setup error.
type Factory func(cfg core.Config) (*Backend, error)

var (
	mu        sync.Mutex
	factories = map[string]Factory{}
)

// Register makes a backend available to Open. Backends register themselves
// from init, per build tag.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

func Open(name string, cfg core.Config) (*Backend, error) {
	mu.Lock()
	f, ok := factories[name]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownBackend, name, Names())
	}
	b, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", name, err)
	}
	b.Name = name
	return b, nil
}

func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(factories))
	for n := range factories {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
