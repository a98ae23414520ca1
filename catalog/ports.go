// Package catalog supplies extension records to the placement engine:
// the provider ports it consumes and filesystem-backed implementations
// for local scanning and remote environment descriptors.
package catalog

import (
	"context"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// Provider supplies the current extension catalogs on demand.
type Provider interface {
	// LocalExtensions returns the current local extension list.
	LocalExtensions(ctx context.Context) ([]*extension.Record, error)

	// RemoteEnvironment returns the current remote extension list plus
	// remote environment metadata, or (nil, nil) when no remote is
	// configured. "No remote" is a steady-state condition, not an error.
	RemoteEnvironment(ctx context.Context) (*RemoteEnvironment, error)
}

// RemoteSource supplies only the remote half of a Provider.
type RemoteSource interface {
	RemoteEnvironment(ctx context.Context) (*RemoteEnvironment, error)
}

// RemoteEnvironment is the metadata and extension list reported by a
// connected remote host environment.
type RemoteEnvironment struct {
	// Connection is the opaque connection descriptor for the remote.
	Connection string

	// PID is the remote agent's process id.
	PID int

	// StoragePath and LogsPath are the remote-side storage locations.
	StoragePath string
	LogsPath    string

	// Extensions is the remote extension catalog.
	Extensions []*extension.Record

	// CycleRemoved lists extensions the remote's catalog merge dropped
	// because of a dependency cycle. This core only forwards them to the
	// diagnostics sink; it never detects cycles itself.
	CycleRemoved []extension.Identity
}
