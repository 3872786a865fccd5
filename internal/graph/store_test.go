package graph

import (
	"encoding/json"
	"testing"

	"blastradius/internal/symbols"
)

func edge(t *testing.T, s *Store, src, tgt string) {
	t.Helper()
	s.AddEdge(src, tgt)
}

// checkInvariants asserts the mirror, no-self-loop and no-empty-set
// invariants after a mutation
func checkInvariants(t *testing.T, s *Store) {
	t.Helper()
	for src, set := range s.forward {
		if len(set) == 0 {
			t.Errorf("empty forward set for %s", src)
		}
		for tgt := range set {
			if src == tgt {
				t.Errorf("self-loop on %s", src)
			}
			if _, ok := s.reverse[tgt][src]; !ok {
				t.Errorf("forward %s->%s not mirrored", src, tgt)
			}
		}
	}
	for tgt, set := range s.reverse {
		if len(set) == 0 {
			t.Errorf("empty reverse set for %s", tgt)
		}
		for src := range set {
			if _, ok := s.forward[src][tgt]; !ok {
				t.Errorf("reverse %s<-%s not mirrored", tgt, src)
			}
		}
	}
}

func TestAddEdgeMirrors(t *testing.T) {
	s := NewStore()
	edge(t, s, "a", "b")
	checkInvariants(t, s)

	if got := s.Dependents("b"); len(got) != 1 || got[0] != "a" {
		t.Errorf("Dependents(b) = %v", got)
	}
	if got := s.Dependencies("a"); len(got) != 1 || got[0] != "b" {
		t.Errorf("Dependencies(a) = %v", got)
	}
}

func TestSelfLoopSuppressed(t *testing.T) {
	s := NewStore()
	edge(t, s, "a", "a")
	if s.EdgeCount() != 0 {
		t.Error("self-loop was recorded")
	}
}

func TestRemoveEdgeDropsEmptySets(t *testing.T) {
	s := NewStore()
	edge(t, s, "a", "b")
	s.RemoveEdge("a", "b")
	checkInvariants(t, s)
	if len(s.forward) != 0 || len(s.reverse) != 0 {
		t.Errorf("drained sets kept their keys: %v %v", s.forward, s.reverse)
	}
}

func TestEvictFileRemovesBothDirections(t *testing.T) {
	index := symbols.NewIndex()
	index.Put(&symbols.Symbol{ID: "/w/a.ts#x", FilePath: "/w/a.ts", QualifiedName: "x"})
	index.Put(&symbols.Symbol{ID: "/w/b.ts#y", FilePath: "/w/b.ts", QualifiedName: "y"})
	index.Put(&symbols.Symbol{ID: "/w/c.ts#z", FilePath: "/w/c.ts", QualifiedName: "z"})

	s := NewStore()
	edge(t, s, "/w/a.ts#x", "/w/b.ts#y") // source in evicted file
	edge(t, s, "/w/c.ts#z", "/w/a.ts#x") // target in evicted file
	edge(t, s, "/w/c.ts#z", "/w/b.ts#y") // untouched

	removed := s.EvictFile("/w/a.ts", index)
	checkInvariants(t, s)

	if len(removed) != 1 || removed[0] != "/w/a.ts#x" {
		t.Fatalf("removed = %v", removed)
	}
	if index.Has("/w/a.ts#x") {
		t.Error("evicted symbol still indexed")
	}
	if !s.HasEdge("/w/c.ts#z", "/w/b.ts#y") {
		t.Error("unrelated edge lost")
	}
	if s.HasEdge("/w/a.ts#x", "/w/b.ts#y") || s.HasEdge("/w/c.ts#z", "/w/a.ts#x") {
		t.Error("evicted edges survived")
	}
}

func TestCloneIsolation(t *testing.T) {
	s := NewStore()
	edge(t, s, "a", "b")
	clone := s.Clone()
	clone.AddEdge("b", "c")
	clone.RemoveEdge("a", "b")

	if !s.HasEdge("a", "b") {
		t.Error("mutating the clone changed the original")
	}
	if s.HasEdge("b", "c") {
		t.Error("clone addition leaked into the original")
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	s := NewStore()
	edge(t, s, "a", "b")
	edge(t, s, "c", "b")
	edge(t, s, "b", "d")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loaded := NewStore()
	if err := json.Unmarshal(data, loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !s.Equal(loaded) {
		t.Error("round trip changed the graph")
	}
	checkInvariants(t, loaded)
}

func TestLegacySectionedRead(t *testing.T) {
	payload := []byte(`{
		"present": {
			"forward": {"a": ["b"]},
			"reverse": {"b": ["a"]}
		},
		"future": {
			"forward": {"x": ["y"]},
			"reverse": {"y": ["x"]}
		}
	}`)

	loaded := NewStore()
	if err := json.Unmarshal(payload, loaded); err != nil {
		t.Fatalf("unmarshal legacy form: %v", err)
	}
	if !loaded.HasEdge("a", "b") {
		t.Error("present section not adopted")
	}
	if loaded.HasEdge("x", "y") {
		t.Error("future section leaked into the live graph")
	}
}
