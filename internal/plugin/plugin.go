// Package plugin holds the pre-submit hooks that may rewrite a batch request
// before it is sent to Livy.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/livyctl/livyctl/internal/api"
	"github.com/livyctl/livyctl/pkg/config"
)

// ErrUnknownPlugin is returned for a hook name nothing registered.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Hook runs before a batch is created.
type Hook interface {
	Name() string
	PreSubmit(ctx context.Context, req *api.CreateBatchRequest) error
}

// Factory builds a hook from the user configuration.
type Factory func(ctx context.Context, cfg *config.Config) (Hook, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a hook available under name. Registering a name twice
// replaces the earlier factory.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// Names returns the registered hook names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the hook registered under name.
func New(ctx context.Context, name string, cfg *config.Config) (Hook, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q, available: %v", ErrUnknownPlugin, name, Names())
	}
	return factory(ctx, cfg)
}

// RunPreSubmit runs the named hooks in order, each seeing the request as left
// by the one before.
func RunPreSubmit(ctx context.Context, cfg *config.Config, names []string, req *api.CreateBatchRequest) error {
	for _, name := range names {
		hook, err := New(ctx, name, cfg)
		if err != nil {
			return fmt.Errorf("failed to load plugin %s: %w", name, err)
		}

		slog.Info("Run pre-submit action", "plugin", hook.Name())
		if err := hook.PreSubmit(ctx, req); err != nil {
			return fmt.Errorf("pre-submit action %s failed: %w", hook.Name(), err)
		}
	}
	return nil
}
