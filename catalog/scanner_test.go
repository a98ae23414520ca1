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

func writeManifest(t *testing.T, root, dir, content string) {
	t.Helper()
	path := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(path, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(path, "extension.yaml"), []byte(content), 0o600))
}

func Test_Scanner_LocalExtensions(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "vim", `
name: vim
version: 1.0.0
capabilities: [web]
`)
	writeManifest(t, root, "themer", `
name: themer
version: 0.3.1
capabilities: [ui, web]
`)

	s := NewScanner(root)
	records, err := s.LocalExtensions(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "themer", records[0].Identity().String())
	assert.Equal(t, "vim", records[1].Identity().String())
	assert.Equal(t, extension.OriginLocal, records[0].Origin())
	assert.Equal(t, []extension.Capability{
		extension.CapabilityUI, extension.CapabilityWeb,
	}, records[0].Capabilities())
}

func Test_Scanner_SkipsInvalidManifests(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "ok", `
name: ok
version: 1.0.0
capabilities: [web]
`)
	writeManifest(t, root, "broken", "name: [unclosed")
	writeManifest(t, root, "nameless", "version: 1.0.0")

	s := NewScanner(root)
	records, err := s.LocalExtensions(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "ok", records[0].Identity().String())
}

func Test_Scanner_DuplicateIdentitySuperseded(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "vim-old", `
name: vim
version: 1.0.0
capabilities: [web]
`)
	writeManifest(t, root, "vim-new", `
name: vim
version: 2.0.0
capabilities: [web]
`)

	s := NewScanner(root)
	records, err := s.LocalExtensions(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "2.0.0", records[0].Version())
}

func Test_Scanner_CustomPattern(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "bundles", "a")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "ext.yml"), []byte(`
name: nested
version: 1.0.0
capabilities: [web]
`), 0o600))

	s := NewScanner(root, WithManifestPattern("**/ext.yml"))
	records, err := s.LocalExtensions(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "nested", records[0].Identity().String())
}

func Test_Scanner_EmptyDirectory(t *testing.T) {
	s := NewScanner(t.TempDir())
	records, err := s.LocalExtensions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func Test_Scanner_NoRemoteSource(t *testing.T) {
	s := NewScanner(t.TempDir())
	env, err := s.RemoteEnvironment(context.Background())
	require.NoError(t, err)
	assert.Nil(t, env)
}
