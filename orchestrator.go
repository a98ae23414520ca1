package hostbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hostbridge-dev/hostbridge-sdk/catalog"
	"github.com/hostbridge-dev/hostbridge-sdk/extension"
	"github.com/hostbridge-dev/hostbridge-sdk/hostsync"
	"github.com/hostbridge-dev/hostbridge-sdk/placement"
)

var (
	// ErrAlreadyStarted is returned by Start on a started orchestrator.
	ErrAlreadyStarted = errors.New("orchestrator already started")
	// ErrNotStarted is returned when an incremental delta arrives before
	// the first full reconciliation produced a placement table.
	ErrNotStarted = errors.New("orchestrator not started")
)

// Orchestrator drives reconciliation cycles: it recomputes the placement
// table from the catalogs, feeds deltas to the synchronizer, and serves
// the hosts' deferred initialization requests. It exclusively owns the
// placement table; the synchronizer borrows it read-only per pass.
//
// Construction is inert. Nothing happens until Start performs the first
// full reconciliation; callers control when that is.
type Orchestrator struct {
	catalog   catalog.Provider
	sync      *hostsync.Synchronizer
	diag      DiagnosticsSink
	logger    *slog.Logger
	autoStart bool

	// passMu serializes reconciliation passes end to end; a new pass
	// never starts while a previous pass has host dispatches outstanding.
	passMu sync.Mutex

	// mu guards the swap-in state below.
	mu         sync.Mutex
	started    bool
	table      *placement.Table
	lastLocal  []*extension.Record
	lastRemote []*extension.Record
	hasRemote  bool
	remoteSnap *RemoteInitSnapshot

	tableReady  chan struct{}
	tableOnce   sync.Once
	remoteReady chan struct{}
	remoteOnce  sync.Once
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithDiagnostics sets the sink for forwarded diagnostics messages.
func WithDiagnostics(d DiagnosticsSink) Option {
	return func(o *Orchestrator) { o.diag = d }
}

// WithLocalAutoStart controls the AutoStart flag served to the local
// host's init request. Default true.
func WithLocalAutoStart(autoStart bool) Option {
	return func(o *Orchestrator) { o.autoStart = autoStart }
}

// New creates an orchestrator over the given catalog provider and
// synchronizer. All collaborators are explicit; there is no ambient
// service lookup.
func New(provider catalog.Provider, sync *hostsync.Synchronizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:     provider,
		sync:        sync,
		logger:      slog.Default(),
		autoStart:   true,
		tableReady:  make(chan struct{}),
		remoteReady: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.diag == nil {
		o.diag = &slogDiagnostics{logger: o.logger}
	}
	return o
}

// Start performs first-time initialization: the first full catalog
// reconciliation. It may be called once.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return ErrAlreadyStarted
	}
	o.started = true
	o.mu.Unlock()

	return o.Resync(ctx)
}

// Resync runs a full-catalog reconciliation pass: scan both catalogs,
// rebuild the placement table, and dispatch the per-host differences.
// On success with a remote present it also captures the remote init
// snapshot. A host's delta rejection is returned to the caller but does
// not abort the other host's dispatch.
func (o *Orchestrator) Resync(ctx context.Context) error {
	o.passMu.Lock()
	defer o.passMu.Unlock()

	local, err := o.catalog.LocalExtensions(ctx)
	if err != nil {
		return fmt.Errorf("scanning local catalog: %w", err)
	}

	renv, err := o.catalog.RemoteEnvironment(ctx)
	if err != nil {
		return fmt.Errorf("scanning remote catalog: %w", err)
	}

	hasRemote := renv != nil
	var remote []*extension.Record
	if hasRemote {
		remote = renv.Extensions
		if len(renv.CycleRemoved) > 0 {
			o.diag.Report(cycleMessage(renv.CycleRemoved))
		}
	}

	next, syncErr := o.sync.Resync(ctx, local, remote, hasRemote)

	o.mu.Lock()
	o.table = next
	o.lastLocal = local
	o.lastRemote = remote
	o.hasRemote = hasRemote
	if syncErr == nil && hasRemote {
		o.remoteSnap = &RemoteInitSnapshot{
			Connection:       renv.Connection,
			PID:              renv.PID,
			StoragePath:      renv.StoragePath,
			LogsPath:         renv.LogsPath,
			RemoteExtensions: recordsFor(next, placement.RemoteHost, local, remote),
			AllExtensions:    catalog.MergeAll(local, remote),
		}
		o.remoteOnce.Do(func() { close(o.remoteReady) })
	}
	o.mu.Unlock()
	o.tableOnce.Do(func() { close(o.tableReady) })

	o.logger.Info("reconciliation pass complete",
		"extensions", next.Len(),
		"local", len(next.Filter(placement.LocalHost)),
		"remote", len(next.Filter(placement.RemoteHost)),
		"has_remote", hasRemote)

	return syncErr
}

// ApplyCatalogDelta performs incremental reconciliation for a catalog
// change (installs, uninstalls). Removed identities are partitioned by
// the placement table that was current when they were placed; added
// records by the rebased table. Only the touched identities are
// re-resolved; the table swap is atomic from the perspective of any
// concurrent reader.
func (o *Orchestrator) ApplyCatalogDelta(
	ctx context.Context,
	added []*extension.Record,
	removed []extension.Identity,
) error {
	o.passMu.Lock()
	defer o.passMu.Unlock()

	o.mu.Lock()
	if o.table == nil {
		o.mu.Unlock()
		return ErrNotStarted
	}
	prev := o.table

	local := applyRecordDelta(o.lastLocal, added, removed, extension.OriginLocal)
	remote := applyRecordDelta(o.lastRemote, added, removed, extension.OriginRemote)

	// Re-resolve the added identities against the successor catalogs,
	// with the same both-catalog preference ComputeAll uses.
	updated := make(map[extension.Identity]placement.Decision, len(added))
	for _, rec := range added {
		id := rec.Identity()
		localRec := findRecord(local, id)
		remoteRec := findRecord(remote, id)

		tagRec := localRec
		if tagRec == nil {
			tagRec = remoteRec
		}
		if tagRec == nil {
			continue
		}

		installedRemotely := o.hasRemote && remoteRec != nil
		updated[id] = placement.Resolve(tagRec.Capabilities(), localRec != nil, installedRemotely)
	}
	next := prev.Rebase(updated, removed)

	o.table = next
	o.lastLocal = local
	o.lastRemote = remote
	o.mu.Unlock()

	return o.sync.Reconcile(ctx, added, removed, prev, next)
}

// LocalInitData serves the local host's deferred init request. It blocks
// until the orchestrator has produced a placement table at least once.
func (o *Orchestrator) LocalInitData(ctx context.Context) (LocalInitData, error) {
	select {
	case <-ctx.Done():
		return LocalInitData{}, ctx.Err()
	case <-o.tableReady:
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return LocalInitData{
		AutoStart:  o.autoStart,
		Extensions: recordsFor(o.table, placement.LocalHost, o.lastLocal, o.lastRemote),
	}, nil
}

// RemoteInitData serves the remote host's deferred init request. It
// blocks until a successful reconciliation pass with a remote present
// has produced a snapshot; it never answers with a stale or empty one.
func (o *Orchestrator) RemoteInitData(ctx context.Context) (*RemoteInitSnapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-o.remoteReady:
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.remoteSnap, nil
}

// Table returns the current placement table, or nil before Start.
func (o *Orchestrator) Table() *placement.Table {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.table
}

// recordsFor resolves the identities holding the given decision back to
// their catalog records, preferring the catalog matching the decision.
func recordsFor(table *placement.Table, d placement.Decision, local, remote []*extension.Record) []*extension.Record {
	primary, secondary := local, remote
	if d == placement.RemoteHost {
		primary, secondary = remote, local
	}

	byID := make(map[extension.Identity]*extension.Record, len(primary)+len(secondary))
	for _, rec := range secondary {
		byID[rec.Identity()] = rec
	}
	for _, rec := range primary {
		byID[rec.Identity()] = rec
	}

	ids := table.Filter(d)
	out := make([]*extension.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// findRecord returns the record for id, or nil when absent. A later
// record under the same identity supersedes an earlier one, matching
// catalog supersedence.
func findRecord(records []*extension.Record, id extension.Identity) *extension.Record {
	var found *extension.Record
	for _, rec := range records {
		if rec.Identity().Equals(id) {
			found = rec
		}
	}
	return found
}

// applyRecordDelta builds the successor catalog list for one origin:
// removed identities drop out, added records of that origin supersede
// existing entries under the same identity.
func applyRecordDelta(
	records []*extension.Record,
	added []*extension.Record,
	removed []extension.Identity,
	origin extension.Origin,
) []*extension.Record {
	dropped := extension.NewIdentitySet(removed...)
	replaced := extension.NewIdentitySet()
	for _, rec := range added {
		if rec.Origin() == origin {
			replaced.Union([]extension.Identity{rec.Identity()})
		}
	}

	out := make([]*extension.Record, 0, len(records)+len(added))
	for _, rec := range records {
		if dropped.Contains(rec.Identity()) || replaced.Contains(rec.Identity()) {
			continue
		}
		out = append(out, rec)
	}
	for _, rec := range added {
		if rec.Origin() == origin {
			out = append(out, rec)
		}
	}
	return out
}

// cycleMessage formats the forwarded dependency-cycle diagnostic.
func cycleMessage(ids []extension.Identity) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.String())
	}
	return fmt.Sprintf("%d extension(s) removed from the catalog due to a dependency cycle: %s",
		len(ids), strings.Join(names, ", "))
}
