package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// emptyModule is the smallest valid WASM binary: magic + version.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func record(t *testing.T, name string) *extension.Record {
	t.Helper()
	rec, err := extension.NewRecord(extension.MustNewIdentity(name), extension.OriginLocal,
		[]extension.Capability{extension.CapabilityWeb}, "1.0.0", nil)
	require.NoError(t, err)
	return rec
}

func Test_NewLocalManager_RequiresLoader(t *testing.T) {
	_, err := NewLocalManager(context.Background(), nil)
	assert.Error(t, err)
}

func Test_LocalManager_ApplyDelta(t *testing.T) {
	ctx := context.Background()
	loader := func(ctx context.Context, rec *extension.Record) ([]byte, error) {
		return emptyModule, nil
	}

	m, err := NewLocalManager(ctx, loader)
	require.NoError(t, err)
	defer func() { _ = m.Close(ctx) }()

	a := record(t, "ext-a")
	b := record(t, "ext-b")

	require.NoError(t, m.ApplyDelta(ctx, []*extension.Record{a, b}, nil))
	assert.Equal(t, []extension.Identity{a.Identity(), b.Identity()}, m.Running())

	require.NoError(t, m.ApplyDelta(ctx, nil, []extension.Identity{a.Identity()}))
	assert.Equal(t, []extension.Identity{b.Identity()}, m.Running())

	// Removing something that is not running is a no-op.
	require.NoError(t, m.ApplyDelta(ctx, nil, []extension.Identity{a.Identity()}))
	assert.Equal(t, []extension.Identity{b.Identity()}, m.Running())
}

func Test_LocalManager_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	loads := 0
	loader := func(ctx context.Context, rec *extension.Record) ([]byte, error) {
		loads++
		return emptyModule, nil
	}

	m, err := NewLocalManager(ctx, loader)
	require.NoError(t, err)
	defer func() { _ = m.Close(ctx) }()

	a := record(t, "ext-a")
	require.NoError(t, m.ApplyDelta(ctx, []*extension.Record{a}, nil))
	require.NoError(t, m.ApplyDelta(ctx, []*extension.Record{a}, nil))

	assert.Equal(t, 1, loads)
	assert.Equal(t, []extension.Identity{a.Identity()}, m.Running())
}

func Test_LocalManager_UpgradeInPlace(t *testing.T) {
	ctx := context.Background()
	loads := 0
	loader := func(ctx context.Context, rec *extension.Record) ([]byte, error) {
		loads++
		return emptyModule, nil
	}

	m, err := NewLocalManager(ctx, loader)
	require.NoError(t, err)
	defer func() { _ = m.Close(ctx) }()

	a := record(t, "ext-a")
	require.NoError(t, m.ApplyDelta(ctx, []*extension.Record{a}, nil))

	// Same identity in both halves of one delta: the new binary must be
	// instantiated even though the identity is already running.
	require.NoError(t, m.ApplyDelta(ctx, []*extension.Record{a}, []extension.Identity{a.Identity()}))

	assert.Equal(t, 2, loads)
	assert.Equal(t, []extension.Identity{a.Identity()}, m.Running())
}

func Test_LocalManager_RejectedDeltaLeavesSetUnchanged(t *testing.T) {
	ctx := context.Background()
	bad := errors.New("binary missing")
	loader := func(ctx context.Context, rec *extension.Record) ([]byte, error) {
		if rec.Identity().String() == "ext-bad" {
			return nil, bad
		}
		return emptyModule, nil
	}

	m, err := NewLocalManager(ctx, loader)
	require.NoError(t, err)
	defer func() { _ = m.Close(ctx) }()

	err = m.ApplyDelta(ctx, []*extension.Record{record(t, "ext-good"), record(t, "ext-bad")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, bad)

	// The staged good extension was rolled back with the rejection.
	assert.Empty(t, m.Running())
}

func Test_DirLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ext-a.wasm"), emptyModule, 0o600))

	loader := DirLoader(dir)

	data, err := loader(context.Background(), record(t, "Ext-A"))
	require.NoError(t, err)
	assert.Equal(t, emptyModule, data)

	_, err = loader(context.Background(), record(t, "ext-missing"))
	assert.Error(t, err)
}
