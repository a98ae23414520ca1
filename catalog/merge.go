package catalog

import (
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// Supersede collapses duplicate identities within one catalog scan.
// The record with the highest parseable semantic version wins; a record
// with a parseable version beats one without; between two unparseable
// versions the later-scanned record wins. The result is sorted by
// identity so identical inputs yield identical output.
func Supersede(records []*extension.Record) []*extension.Record {
	byID := make(map[extension.Identity]*extension.Record, len(records))
	for _, rec := range records {
		current, ok := byID[rec.Identity()]
		if !ok || supersedes(rec, current) {
			byID[rec.Identity()] = rec
		}
	}
	return sortedRecords(byID)
}

// supersedes reports whether candidate should replace current.
func supersedes(candidate, current *extension.Record) bool {
	cv, cErr := semver.NewVersion(candidate.Version())
	pv, pErr := semver.NewVersion(current.Version())

	switch {
	case cErr == nil && pErr == nil:
		return cv.GreaterThan(pv) || cv.Equal(pv)
	case cErr == nil:
		return true
	case pErr == nil:
		return false
	default:
		return true
	}
}

// MergeAll builds the full merged extension list across both catalogs,
// one record per identity, preferring the local record when an identity
// appears in both. Sorted by identity.
func MergeAll(local, remote []*extension.Record) []*extension.Record {
	byID := make(map[extension.Identity]*extension.Record, len(local)+len(remote))
	for _, rec := range remote {
		byID[rec.Identity()] = rec
	}
	for _, rec := range local {
		byID[rec.Identity()] = rec
	}
	return sortedRecords(byID)
}

func sortedRecords(byID map[extension.Identity]*extension.Record) []*extension.Record {
	out := make([]*extension.Record, 0, len(byID))
	for _, rec := range byID {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Identity().String() < out[j].Identity().String()
	})
	return out
}
