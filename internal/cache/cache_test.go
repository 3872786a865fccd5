package cache

import (
	"os"
	"path/filepath"
	"testing"

	"blastradius/internal/graph"
	"blastradius/internal/logging"
	"blastradius/internal/symbols"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".blastradius"), logging.Discard())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := setupCache(t)

	index := symbols.NewIndex()
	index.Put(&symbols.Symbol{
		ID: "/w/a.ts#f", FilePath: "/w/a.ts", QualifiedName: "f",
		Kind: symbols.KindFunction, SignatureHash: "abcd1234abcd1234",
	})
	g := graph.NewStore()
	g.AddEdge("/w/a.ts#f", "/w/b.ts#g")
	hashes := map[string]string{"/w/a.ts": "00ff"}

	if err := c.Save(index, g, hashes, "projhash"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loadedIndex := c.LoadIndex()
	if loadedIndex == nil || !loadedIndex.Has("/w/a.ts#f") {
		t.Fatal("index did not round-trip")
	}
	if loadedIndex.Get("/w/a.ts#f").SignatureHash != "abcd1234abcd1234" {
		t.Error("signature hash lost")
	}

	loadedGraph := c.LoadGraph()
	if loadedGraph == nil || !loadedGraph.HasEdge("/w/a.ts#f", "/w/b.ts#g") {
		t.Fatal("graph did not round-trip")
	}

	loadedHashes := c.LoadHashes()
	if loadedHashes["/w/a.ts"] != "00ff" {
		t.Errorf("hashes = %v", loadedHashes)
	}

	meta := c.LoadMetadata()
	if meta == nil || meta.ProjectHash != "projhash" || meta.Version != Version {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestMissingArtifactsReadAsNil(t *testing.T) {
	c := setupCache(t)
	if c.LoadIndex() != nil || c.LoadGraph() != nil || c.LoadHashes() != nil || c.LoadMetadata() != nil {
		t.Error("missing artifacts should load as nil")
	}
}

func TestCorruptArtifactReadsAsNil(t *testing.T) {
	c := setupCache(t)
	if err := os.MkdirAll(c.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(c.Dir(), "symbols.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c.LoadIndex() != nil {
		t.Error("corrupt artifact should load as nil, not surface an error")
	}
}

func TestHashContentStability(t *testing.T) {
	a := HashContent([]byte("const x = 1\n"))
	b := HashContent([]byte("const x = 1\n"))
	if a != b {
		t.Error("content hash is not deterministic")
	}
	if a == HashContent([]byte("const x = 2\n")) {
		t.Error("different content hashed identically")
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d", len(a))
	}
}

func TestProjectHashMissingFile(t *testing.T) {
	missing := ProjectHash(filepath.Join(t.TempDir(), "tsconfig.json"))
	if missing == "" {
		t.Fatal("missing config should still produce a hash")
	}

	path := filepath.Join(t.TempDir(), "tsconfig.json")
	if err := os.WriteFile(path, []byte(`{"strict":true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if ProjectHash(path) == missing {
		t.Error("config content did not affect the project hash")
	}
}
