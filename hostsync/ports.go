package hostsync

import (
	"context"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
	"github.com/hostbridge-dev/hostbridge-sdk/placement"
)

// Kind names a host kind the synchronizer can dispatch deltas to.
type Kind string

const (
	// KindLocal is the local sandboxed worker host.
	KindLocal Kind = "local"
	// KindRemote is the remote process host.
	KindRemote Kind = "remote"
)

// kinds is the fixed dispatch order; keeps reconciliation deterministic.
var kinds = []Kind{KindLocal, KindRemote}

// KindFor maps a placement decision to the host kind that serves it.
// None maps to no host.
func KindFor(d placement.Decision) (Kind, bool) {
	switch d {
	case placement.LocalHost:
		return KindLocal, true
	case placement.RemoteHost:
		return KindRemote, true
	default:
		return "", false
	}
}

// Manager is implemented by each concrete host (local sandboxed worker,
// remote process). The synchronizer consumes it; it never implements it.
type Manager interface {
	// ApplyDelta brings the host's live extension set in line with the
	// target by starting the added extensions and stopping the removed
	// ones. An error means the delta was not accepted.
	ApplyDelta(ctx context.Context, added []*extension.Record, removed []extension.Identity) error
}

// Delta is the minimal add/remove set destined for one host kind.
type Delta struct {
	Added   []*extension.Record
	Removed []extension.Identity
}

// Empty reports whether the delta carries no work.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}
