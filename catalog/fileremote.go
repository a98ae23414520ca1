package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// FileRemoteProvider implements RemoteSource from a YAML descriptor file,
// as written by a remote agent or a test fixture. A missing file means
// "no remote configured".
type FileRemoteProvider struct {
	path string
}

// NewFileRemoteProvider creates a provider reading the given descriptor.
func NewFileRemoteProvider(path string) *FileRemoteProvider {
	return &FileRemoteProvider{path: path}
}

// remoteDescriptor is the on-disk shape of a remote environment.
type remoteDescriptor struct {
	Connection  string            `yaml:"connection"`
	PID         int               `yaml:"pid"`
	StoragePath string            `yaml:"storage_path"`
	LogsPath    string            `yaml:"logs_path"`
	Extensions  []remoteExtension `yaml:"extensions"`
	// cycle_removed carries identities the remote catalog merge dropped
	// because of a dependency cycle; they are forwarded to diagnostics.
	CycleRemoved []string `yaml:"cycle_removed"`
}

type remoteExtension struct {
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Capabilities []string       `yaml:"capabilities"`
	Payload      map[string]any `yaml:"payload"`
}

// RemoteEnvironment reads and decodes the descriptor file.
func (p *FileRemoteProvider) RemoteEnvironment(ctx context.Context) (*RemoteEnvironment, error) {
	dir := filepath.Dir(p.path)
	base := filepath.Base(p.path)

	// Constrain reads to the descriptor's directory.
	root, err := os.OpenRoot(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open directory %q: %w", dir, err)
	}
	defer func() { _ = root.Close() }()

	file, err := root.Open(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open remote descriptor %q: %w", base, err)
	}
	defer func() { _ = file.Close() }()

	var desc remoteDescriptor
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&desc); err != nil {
		return nil, fmt.Errorf("decoding remote descriptor YAML: %w", err)
	}

	return desc.toEnvironment()
}

func (d *remoteDescriptor) toEnvironment() (*RemoteEnvironment, error) {
	env := &RemoteEnvironment{
		Connection:  d.Connection,
		PID:         d.PID,
		StoragePath: d.StoragePath,
		LogsPath:    d.LogsPath,
	}

	records := make([]*extension.Record, 0, len(d.Extensions))
	for _, e := range d.Extensions {
		id, err := extension.NewIdentity(e.Name)
		if err != nil {
			return nil, fmt.Errorf("remote descriptor extension %q: %w", e.Name, err)
		}
		caps := make([]extension.Capability, 0, len(e.Capabilities))
		for _, c := range e.Capabilities {
			caps = append(caps, extension.Capability(c))
		}
		rec, err := extension.NewRecord(id, extension.OriginRemote, caps, e.Version, e.Payload)
		if err != nil {
			return nil, fmt.Errorf("remote descriptor extension %q: %w", e.Name, err)
		}
		records = append(records, rec)
	}
	env.Extensions = Supersede(records)

	for _, name := range d.CycleRemoved {
		id, err := extension.NewIdentity(name)
		if err != nil {
			return nil, fmt.Errorf("remote descriptor cycle_removed %q: %w", name, err)
		}
		env.CycleRemoved = append(env.CycleRemoved, id)
	}

	return env, nil
}
