package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// Manifest is the declarative description of one extension as found in a
// catalog scan. Fields beyond the ones this core interprets are kept as
// an opaque payload.
type Manifest struct {
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Capabilities []string       `yaml:"capabilities"`
	Payload      map[string]any `yaml:",inline"`
}

// ParseManifest unmarshals YAML bytes into a Manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding extension manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("extension manifest missing name")
	}
	return &m, nil
}

// ToRecord converts the manifest into a catalog record with the given
// origin. Capability tags keep their declared order.
func (m *Manifest) ToRecord(origin extension.Origin) (*extension.Record, error) {
	id, err := extension.NewIdentity(m.Name)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", m.Name, err)
	}

	caps := make([]extension.Capability, 0, len(m.Capabilities))
	for _, c := range m.Capabilities {
		caps = append(caps, extension.Capability(c))
	}

	return extension.NewRecord(id, origin, caps, m.Version, m.Payload)
}
