// Package placement decides, for every extension in the catalog, which
// single host should run it, and keeps the decisions in a versioned table
// that the synchronizer diffs against.
package placement

import (
	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// Decision names the single host, if any, that should run an extension.
type Decision int

const (
	// None means the extension is unplaceable this cycle. It is omitted
	// from every host; this is a valid outcome, not an error.
	None Decision = iota
	// LocalHost places the extension on the local sandboxed worker.
	LocalHost
	// RemoteHost places the extension on the remote process.
	RemoteHost
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case LocalHost:
		return "local"
	case RemoteHost:
		return "remote"
	default:
		return "none"
	}
}

// Resolve maps an extension's declared capability tags and installation
// facts to a placement decision. Tags are evaluated in their declared
// order and the first matching rule wins:
//
//  1. "ui" while installed remotely places on the remote host.
//  2. "workspace" while installed remotely places on the remote host.
//  3. "web" while installed locally places on the local host.
//
// An extension matching no rule resolves to None. Pure function; never
// fails.
func Resolve(tags []extension.Capability, installedLocally, installedRemotely bool) Decision {
	for _, tag := range tags {
		switch tag {
		case extension.CapabilityUI:
			if installedRemotely {
				return RemoteHost
			}
		case extension.CapabilityWorkspace:
			if installedRemotely {
				return RemoteHost
			}
		case extension.CapabilityWeb:
			if installedLocally {
				return LocalHost
			}
		}
	}
	return None
}
