package extension

import "sort"

// IdentitySet is a mutable set of extension identities. It backs the
// per-host bookkeeping of which extensions are believed to be running on
// a host; only its owner may mutate it.
type IdentitySet struct {
	members map[Identity]struct{}
}

// NewIdentitySet creates a set containing the given identities.
func NewIdentitySet(ids ...Identity) *IdentitySet {
	s := &IdentitySet{members: make(map[Identity]struct{}, len(ids))}
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is a member.
func (s *IdentitySet) Contains(id Identity) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of members.
func (s *IdentitySet) Len() int {
	return len(s.members)
}

// Union adds all given identities to the set.
func (s *IdentitySet) Union(ids []Identity) {
	for _, id := range ids {
		s.members[id] = struct{}{}
	}
}

// Subtract removes all given identities from the set.
func (s *IdentitySet) Subtract(ids []Identity) {
	for _, id := range ids {
		delete(s.members, id)
	}
}

// Sorted returns the members in lexicographic order.
func (s *IdentitySet) Sorted() []Identity {
	out := make([]Identity, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].value < out[j].value })
	return out
}
