// Package hostbridge keeps a set of execution hosts consistent with a
// catalog of installable extensions. A priority-ordered capability policy
// decides which single host should run each extension, and a delta
// synchronizer fans minimal add/remove sets out to the hosts so they are
// not needlessly restarted when the catalog changes.
//
// The Orchestrator is the entry point: it owns the placement table, runs
// reconciliation passes against a catalog.Provider, and serves deferred
// host initialization requests. Concrete hosts implement
// hostsync.Manager; a wazero-backed local sandbox lives in the host
// package.
package hostbridge
