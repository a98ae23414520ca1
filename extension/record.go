// Package extension defines the value types describing installable
// extensions: identities, capability tags, and catalog records.
package extension

import (
	"fmt"
)

// Capability is a declared attribute of an extension indicating where it
// is eligible to run.
type Capability string

// Known capability tags.
const (
	// CapabilityUI marks extensions that need to run near the workspace UI.
	CapabilityUI Capability = "ui"
	// CapabilityWorkspace marks extensions that need workspace access.
	CapabilityWorkspace Capability = "workspace"
	// CapabilityWeb marks extensions that can run in the sandboxed worker.
	CapabilityWeb Capability = "web"
)

// Origin indicates which catalog a record was scanned from.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Record describes one extension as seen by a catalog scan.
// A record is immutable for the lifetime of one placement cycle; a later
// scan supersedes it with a new record under the same identity.
type Record struct {
	identity     Identity
	origin       Origin
	capabilities []Capability
	version      string
	manifest     map[string]any
}

// NewRecord creates a catalog record.
// Capabilities keep their declared order and are not deduplicated; the
// order carries placement priority.
func NewRecord(
	id Identity,
	origin Origin,
	capabilities []Capability,
	version string,
	manifest map[string]any,
) (*Record, error) {
	if id.IsEmpty() {
		return nil, fmt.Errorf("extension record requires a non-empty identity")
	}
	if origin != OriginLocal && origin != OriginRemote {
		return nil, fmt.Errorf("invalid extension origin %q", origin)
	}

	caps := make([]Capability, len(capabilities))
	copy(caps, capabilities)

	return &Record{
		identity:     id,
		origin:       origin,
		capabilities: caps,
		version:      version,
		manifest:     manifest,
	}, nil
}

// Identity returns the extension's unique identifier.
func (r *Record) Identity() Identity {
	return r.identity
}

// Origin returns which catalog this record was scanned from.
func (r *Record) Origin() Origin {
	return r.origin
}

// Capabilities returns the declared capability tags in declaration order.
func (r *Record) Capabilities() []Capability {
	caps := make([]Capability, len(r.capabilities))
	copy(caps, r.capabilities)
	return caps
}

// Version returns the declared version string, possibly empty.
func (r *Record) Version() string {
	return r.version
}

// Manifest returns the opaque manifest payload.
func (r *Record) Manifest() map[string]any {
	return r.manifest
}
