// Package host provides the WASM-sandboxed local worker host. It
// implements hostsync.Manager by keeping one instantiated module per
// extension placed on the local host.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// BinaryLoader resolves an extension record to its WASM binary.
type BinaryLoader func(ctx context.Context, rec *extension.Record) ([]byte, error)

// LocalManager runs extensions inside a shared wazero runtime, one module
// per extension. Deltas apply atomically: if any added extension fails to
// instantiate, the whole delta is rejected and the live set is unchanged.
type LocalManager struct {
	runtime wazero.Runtime
	loader  BinaryLoader
	logger  *slog.Logger

	mu      sync.Mutex
	modules map[extension.Identity]api.Module
	seq     uint64
}

// NewLocalManager creates a local manager with the given binary loader.
func NewLocalManager(ctx context.Context, loader BinaryLoader, opts ...Option) (*LocalManager, error) {
	if loader == nil {
		return nil, fmt.Errorf("binary loader is required")
	}

	cfg := managerConfig{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeConfig := wazero.NewRuntimeConfig()
	if cfg.cache != nil {
		runtimeConfig = runtimeConfig.WithCompilationCache(cfg.cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	return &LocalManager{
		runtime: rt,
		loader:  loader,
		logger:  cfg.logger,
		modules: make(map[extension.Identity]api.Module),
	}, nil
}

// ApplyDelta instantiates the added extensions and closes the removed
// ones. All additions are staged before anything is committed, so a
// failed delta leaves the live extension set at its pre-delta value.
// An identity in both halves of the delta is an in-place upgrade: the
// new module is staged, then the old one is closed and replaced.
func (m *LocalManager) ApplyDelta(ctx context.Context, added []*extension.Record, removed []extension.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := make(map[extension.Identity]struct{}, len(removed))
	for _, id := range removed {
		replaced[id] = struct{}{}
	}

	staged := make(map[extension.Identity]api.Module, len(added))
	for _, rec := range added {
		id := rec.Identity()
		if _, replacing := replaced[id]; !replacing {
			if _, running := m.modules[id]; running {
				continue
			}
		}

		mod, err := m.instantiate(ctx, rec)
		if err != nil {
			for _, s := range staged {
				_ = s.Close(ctx)
			}
			return fmt.Errorf("starting extension %q: %w", id, err)
		}
		staged[id] = mod
	}

	for _, id := range removed {
		mod, running := m.modules[id]
		if !running {
			continue
		}
		if err := mod.Close(ctx); err != nil {
			m.logger.Warn("failed to close extension module",
				"extension", id.String(), "error", err)
		}
		delete(m.modules, id)
	}

	for id, mod := range staged {
		m.modules[id] = mod
		m.logger.Debug("extension started in local sandbox", "extension", id.String())
	}

	return nil
}

// instantiate loads and instantiates one extension module.
func (m *LocalManager) instantiate(ctx context.Context, rec *extension.Record) (api.Module, error) {
	wasmBytes, err := m.loader(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("loading binary: %w", err)
	}

	// Instance-unique module name: during an in-place upgrade the old
	// and new instance of one extension briefly coexist in the runtime.
	m.seq++
	name := fmt.Sprintf("%s.%d", rec.Identity(), m.seq)

	mod, err := m.runtime.InstantiateWithConfig(ctx, wasmBytes,
		wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, fmt.Errorf("instantiating module: %w", err)
	}

	// Reactor-style modules export _initialize instead of _start.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("calling _initialize: %w", err)
		}
	}

	return mod, nil
}

// Running returns the identities of the currently instantiated
// extensions, sorted.
func (m *LocalManager) Running() []extension.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := extension.NewIdentitySet()
	for id := range m.modules {
		set.Union([]extension.Identity{id})
	}
	return set.Sorted()
}

// Close tears down the runtime and every instantiated extension.
func (m *LocalManager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules = make(map[extension.Identity]api.Module)
	return m.runtime.Close(ctx)
}
