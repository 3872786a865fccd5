// Package graph holds the bidirectional symbol dependency graph: a forward
// adjacency map (what a symbol references) and its mirrored reverse map
// (what references a symbol), updated together atomically.
package graph

import (
	"sort"

	"blastradius/internal/symbols"
)

// Store is the forward/reverse edge store. Neighbor queries are O(1) map
// lookups. Invariants: the maps mirror each other, no self-loops, and a key
// whose set drains is removed.
type Store struct {
	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
}

// NewStore creates an empty graph store
func NewStore() *Store {
	return &Store{
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// AddEdge records src → tgt and mirrors it into the reverse map.
// Self-loops are suppressed.
func (s *Store) AddEdge(src, tgt string) {
	if src == tgt || src == "" || tgt == "" {
		return
	}
	addTo(s.forward, src, tgt)
	addTo(s.reverse, tgt, src)
}

// RemoveEdge deletes src → tgt from both maps
func (s *Store) RemoveEdge(src, tgt string) {
	removeFrom(s.forward, src, tgt)
	removeFrom(s.reverse, tgt, src)
}

// HasEdge reports whether src → tgt exists
func (s *Store) HasEdge(src, tgt string) bool {
	set, ok := s.forward[src]
	if !ok {
		return false
	}
	_, ok = set[tgt]
	return ok
}

// Dependencies returns the ids src references, sorted
func (s *Store) Dependencies(src string) []string {
	return sortedKeys(s.forward[src])
}

// Dependents returns the ids that reference tgt, sorted
func (s *Store) Dependents(tgt string) []string {
	return sortedKeys(s.reverse[tgt])
}

// DependentSet returns the live reverse neighbor set for tgt; callers must
// not mutate it
func (s *Store) DependentSet(tgt string) map[string]struct{} {
	return s.reverse[tgt]
}

// EdgeCount returns the number of forward edges
func (s *Store) EdgeCount() int {
	n := 0
	for _, set := range s.forward {
		n += len(set)
	}
	return n
}

// Keys returns the union of forward and reverse key sets
func (s *Store) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(s.forward)+len(s.reverse))
	for id := range s.forward {
		keys[id] = struct{}{}
	}
	for id := range s.reverse {
		keys[id] = struct{}{}
	}
	return keys
}

// EvictFile removes every edge whose source or target belongs to path and
// deletes the file's symbols from the index. Returns the removed symbol IDs.
func (s *Store) EvictFile(path string, index *symbols.Index) []string {
	var removed []string
	for _, sym := range index.FileSymbols(path) {
		id := sym.ID
		for tgt := range s.forward[id] {
			removeFrom(s.reverse, tgt, id)
		}
		delete(s.forward, id)
		for src := range s.reverse[id] {
			removeFrom(s.forward, src, id)
		}
		delete(s.reverse, id)
		index.Remove(id)
		removed = append(removed, id)
	}
	sort.Strings(removed)
	return removed
}

// Clear drops every edge while keeping the map identities, so shared
// references observe the emptied graph
func (s *Store) Clear() {
	for id := range s.forward {
		delete(s.forward, id)
	}
	for id := range s.reverse {
		delete(s.reverse, id)
	}
}

// Clone deep-copies both adjacency maps. Speculative analyses mutate the
// clone freely without touching the live graph.
func (s *Store) Clone() *Store {
	return &Store{
		forward: cloneAdjacency(s.forward),
		reverse: cloneAdjacency(s.reverse),
	}
}

// Equal reports whether two stores contain the same edges
func (s *Store) Equal(o *Store) bool {
	return adjacencyEqual(s.forward, o.forward) && adjacencyEqual(s.reverse, o.reverse)
}

func addTo(m map[string]map[string]struct{}, key, member string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[member] = struct{}{}
}

func removeFrom(m map[string]map[string]struct{}, key, member string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, member)
	if len(set) == 0 {
		delete(m, key)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func cloneAdjacency(m map[string]map[string]struct{}) map[string]map[string]struct{} {
	clone := make(map[string]map[string]struct{}, len(m))
	for key, set := range m {
		cs := make(map[string]struct{}, len(set))
		for member := range set {
			cs[member] = struct{}{}
		}
		clone[key] = cs
	}
	return clone
}

func adjacencyEqual(a, b map[string]map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for key, set := range a {
		other, ok := b[key]
		if !ok || len(other) != len(set) {
			return false
		}
		for member := range set {
			if _, ok := other[member]; !ok {
				return false
			}
		}
	}
	return true
}
