package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

func Test_FileRemoteProvider_ReadsDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
connection: tcp://remote:8000
pid: 4242
storage_path: /srv/hostbridge/storage
logs_path: /srv/hostbridge/logs
extensions:
  - name: e1
    version: 1.0.0
    capabilities: [ui]
cycle_removed:
  - loop-a
  - loop-b
`), 0o600))

	p := NewFileRemoteProvider(path)
	env, err := p.RemoteEnvironment(context.Background())
	require.NoError(t, err)
	require.NotNil(t, env)

	assert.Equal(t, "tcp://remote:8000", env.Connection)
	assert.Equal(t, 4242, env.PID)
	assert.Equal(t, "/srv/hostbridge/storage", env.StoragePath)
	assert.Equal(t, "/srv/hostbridge/logs", env.LogsPath)

	require.Len(t, env.Extensions, 1)
	assert.Equal(t, "e1", env.Extensions[0].Identity().String())
	assert.Equal(t, extension.OriginRemote, env.Extensions[0].Origin())
	assert.Equal(t, []extension.Capability{extension.CapabilityUI}, env.Extensions[0].Capabilities())

	assert.Equal(t, []extension.Identity{
		extension.MustNewIdentity("loop-a"),
		extension.MustNewIdentity("loop-b"),
	}, env.CycleRemoved)
}

func Test_FileRemoteProvider_MissingFileMeansNoRemote(t *testing.T) {
	p := NewFileRemoteProvider(filepath.Join(t.TempDir(), "absent.yaml"))
	env, err := p.RemoteEnvironment(context.Background())
	require.NoError(t, err)
	assert.Nil(t, env)
}

func Test_FileRemoteProvider_MissingDirectoryMeansNoRemote(t *testing.T) {
	p := NewFileRemoteProvider(filepath.Join(t.TempDir(), "nope", "absent.yaml"))
	env, err := p.RemoteEnvironment(context.Background())
	require.NoError(t, err)
	assert.Nil(t, env)
}

func Test_FileRemoteProvider_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection: [unclosed"), 0o600))

	p := NewFileRemoteProvider(path)
	_, err := p.RemoteEnvironment(context.Background())
	assert.Error(t, err)
}

func Test_FileRemoteProvider_InvalidExtensionName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
connection: tcp://remote:8000
extensions:
  - name: "../escape"
    version: 1.0.0
`), 0o600))

	p := NewFileRemoteProvider(path)
	_, err := p.RemoteEnvironment(context.Background())
	assert.Error(t, err)
}
