// Package hostsync computes minimal add/remove deltas between successive
// placement snapshots and fans them out to the attached host managers.
package hostsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hostbridge-dev/hostbridge-sdk/extension"
	"github.com/hostbridge-dev/hostbridge-sdk/placement"
)

// Synchronizer owns the per-host bookkeeping of which extensions each
// host is believed to be running, and dispatches deltas to the attached
// managers. Reconciliation passes are serialized: a new pass does not
// start while a previous pass still has host dispatches outstanding.
type Synchronizer struct {
	mu       sync.Mutex
	managers map[Kind]Manager
	running  map[Kind]*extension.IdentitySet
	logger   *slog.Logger
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = l }
}

// NewSynchronizer creates a synchronizer with no hosts attached.
func NewSynchronizer(opts ...Option) *Synchronizer {
	s := &Synchronizer{
		managers: make(map[Kind]Manager),
		running:  make(map[Kind]*extension.IdentitySet),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach registers the manager for a host kind that came online. The
// host's extension set starts empty; the next reconciliation pass will
// populate it.
func (s *Synchronizer) Attach(kind Kind, m Manager) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[kind] = m
	if _, ok := s.running[kind]; !ok {
		s.running[kind] = extension.NewIdentitySet()
	}
}

// Detach removes the manager for a host kind that was torn down (e.g.
// remote connection lost) and discards its extension set.
func (s *Synchronizer) Detach(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managers, kind)
	delete(s.running, kind)
}

// Running returns a sorted snapshot of the extensions believed to be
// running on the given host kind.
func (s *Synchronizer) Running(kind Kind) []extension.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.running[kind]
	if !ok {
		return nil
	}
	return set.Sorted()
}

// Reconcile applies an incremental catalog delta. Added records are
// partitioned by their decision in the next table (None is dropped);
// removed identities are partitioned by their decision in the previous
// table, which must be the table that was current when they were placed.
func (s *Synchronizer) Reconcile(
	ctx context.Context,
	added []*extension.Record,
	removed []extension.Identity,
	prev, next *placement.Table,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deltas := make(map[Kind]*Delta)
	for _, rec := range added {
		kind, ok := KindFor(next.DecisionFor(rec.Identity()))
		if !ok {
			continue
		}
		d := deltaFor(deltas, kind)
		d.Added = append(d.Added, rec)
	}
	for _, id := range removed {
		kind, ok := KindFor(prev.DecisionFor(id))
		if !ok {
			continue
		}
		d := deltaFor(deltas, kind)
		d.Removed = append(d.Removed, id)
	}

	return s.dispatchLocked(ctx, deltas)
}

// Resync performs full-catalog reconciliation: it computes a fresh
// placement table, derives the target set per host, and treats the
// difference against each host's current extension set as the delta.
// Cold start and steady-state rescans share this single code path.
// The new table is returned for the caller to retain as the previous
// state of the next cycle.
func (s *Synchronizer) Resync(
	ctx context.Context,
	local, remote []*extension.Record,
	hasRemote bool,
) (*placement.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !hasRemote {
		remote = nil
	}
	next := placement.ComputeAll(local, remote, hasRemote)

	deltas := make(map[Kind]*Delta)
	for _, kind := range kinds {
		decision := decisionFor(kind)
		target := next.Filter(decision)
		targetSet := extension.NewIdentitySet(target...)

		current, ok := s.running[kind]
		if !ok {
			current = extension.NewIdentitySet()
		}

		var delta Delta
		for _, id := range target {
			if !current.Contains(id) {
				rec := recordFor(kind, id, local, remote)
				if rec == nil {
					// Filter only yields identities present in a catalog.
					continue
				}
				delta.Added = append(delta.Added, rec)
			}
		}
		for _, id := range current.Sorted() {
			if !targetSet.Contains(id) {
				delta.Removed = append(delta.Removed, id)
			}
		}
		if !delta.Empty() {
			deltas[kind] = &delta
		}
	}

	if err := s.dispatchLocked(ctx, deltas); err != nil {
		return next, err
	}
	return next, nil
}

// dispatchLocked fans the per-host deltas out to the attached managers.
// The host kinds run concurrently and independently: a failing or slow
// host never delays or cancels the other, and a rejected delta leaves
// that host's extension set at its pre-delta value. A missing manager is
// a steady-state condition (host not started, no remote) and skips the
// delta silently.
func (s *Synchronizer) dispatchLocked(ctx context.Context, deltas map[Kind]*Delta) error {
	type dispatch struct {
		kind  Kind
		delta *Delta
	}

	var work []dispatch
	for _, kind := range kinds {
		delta, ok := deltas[kind]
		if !ok || delta.Empty() {
			continue
		}
		if _, attached := s.managers[kind]; !attached {
			s.logger.Debug("host not available, skipping delta",
				"host", string(kind),
				"added", len(delta.Added),
				"removed", len(delta.Removed))
			continue
		}
		work = append(work, dispatch{kind: kind, delta: delta})
	}

	results := make([]error, len(work))
	var g errgroup.Group
	for i, w := range work {
		mgr := s.managers[w.kind]
		g.Go(func() error {
			if err := mgr.ApplyDelta(ctx, w.delta.Added, w.delta.Removed); err != nil {
				results[i] = err
				return fmt.Errorf("%s host rejected delta: %w", w.kind, err)
			}
			return nil
		})
	}
	err := g.Wait()

	// Bookkeeping is optimistic: only hosts that accepted their delta
	// move forward, so the next pass diffs against truthful state.
	for i, w := range work {
		if results[i] != nil {
			s.logger.Warn("host delta rejected, keeping previous extension set",
				"host", string(w.kind),
				"error", results[i])
			continue
		}
		set := s.running[w.kind]
		added := make([]extension.Identity, 0, len(w.delta.Added))
		for _, rec := range w.delta.Added {
			added = append(added, rec.Identity())
		}
		// Removals first: an identity in both halves of the delta is an
		// in-place upgrade and must stay in the set.
		set.Subtract(w.delta.Removed)
		set.Union(added)
		s.logger.Debug("host delta applied",
			"host", string(w.kind),
			"added", len(added),
			"removed", len(w.delta.Removed),
			"running", set.Len())
	}

	return err
}

func deltaFor(deltas map[Kind]*Delta, kind Kind) *Delta {
	d, ok := deltas[kind]
	if !ok {
		d = &Delta{}
		deltas[kind] = d
	}
	return d
}

func decisionFor(kind Kind) placement.Decision {
	if kind == KindRemote {
		return placement.RemoteHost
	}
	return placement.LocalHost
}

// recordFor picks the record to ship to a host. The remote host gets the
// remote catalog's record when present; the local host prefers the local
// one. Later duplicates within one catalog supersede earlier ones.
func recordFor(kind Kind, id extension.Identity, local, remote []*extension.Record) *extension.Record {
	primary, secondary := local, remote
	if kind == KindRemote {
		primary, secondary = remote, local
	}
	if rec := lookupRecord(primary, id); rec != nil {
		return rec
	}
	return lookupRecord(secondary, id)
}

func lookupRecord(records []*extension.Record, id extension.Identity) *extension.Record {
	var found *extension.Record
	for _, rec := range records {
		if rec.Identity().Equals(id) {
			found = rec
		}
	}
	return found
}
