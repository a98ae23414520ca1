package hostbridge

import (
	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// RemoteInitSnapshot is the point-in-time capture served to the remote
// host's deferred initialization request. It is produced at most once per
// successful reconciliation pass with a remote present and re-served to
// late-arriving requests without recomputation.
type RemoteInitSnapshot struct {
	// Connection is the opaque connection descriptor of the remote.
	Connection string

	// PID is the remote agent's process id.
	PID int

	// StoragePath and LogsPath are the remote-side storage locations.
	StoragePath string
	LogsPath    string

	// RemoteExtensions lists the records placed on the remote host.
	RemoteExtensions []*extension.Record

	// AllExtensions is the full merged extension list across catalogs.
	AllExtensions []*extension.Record
}

// LocalInitData is served to the local host's deferred initialization
// request once the orchestrator has produced a placement table.
type LocalInitData struct {
	// AutoStart indicates whether the local host should start its
	// extensions immediately.
	AutoStart bool

	// Extensions lists the records placed on the local host.
	Extensions []*extension.Record
}
