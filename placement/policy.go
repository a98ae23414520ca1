package placement

import (
	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// ComputeAll builds a fresh placement table from the local and remote
// catalogs. Every identity present in either catalog gets exactly one
// entry; identities present in neither do not exist this cycle.
//
// When hasRemote is false the remote catalog is treated as empty, so no
// identity can resolve to RemoteHost. When an identity appears in both
// catalogs it is resolved once, with both membership flags set, using the
// local record's declared tag order.
//
// The result is deterministic: identical inputs yield an Equal table
// regardless of map iteration order, because each identity's decision
// depends only on its own tags and membership flags.
func ComputeAll(local, remote []*extension.Record, hasRemote bool) *Table {
	if !hasRemote {
		remote = nil
	}

	localByID := indexRecords(local)
	remoteByID := indexRecords(remote)

	decisions := make(map[extension.Identity]Decision, len(localByID)+len(remoteByID))

	for id, rec := range localByID {
		_, installedRemotely := remoteByID[id]
		decisions[id] = Resolve(rec.Capabilities(), true, installedRemotely)
	}
	for id, rec := range remoteByID {
		if _, seen := localByID[id]; seen {
			continue
		}
		decisions[id] = Resolve(rec.Capabilities(), false, true)
	}

	return NewTable(decisions)
}

// indexRecords keys records by identity. A later record under the same
// identity supersedes an earlier one, matching catalog supersedence.
func indexRecords(records []*extension.Record) map[extension.Identity]*extension.Record {
	out := make(map[extension.Identity]*extension.Record, len(records))
	for _, rec := range records {
		out[rec.Identity()] = rec
	}
	return out
}
