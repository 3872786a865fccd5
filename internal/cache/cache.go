// Package cache persists and restores the symbol index, the bidirectional
// graph, per-file content hashes, and the project-config hash under the
// project's cache directory.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"

	"blastradius/internal/graph"
	"blastradius/internal/logging"
	"blastradius/internal/symbols"
)

// Version tags the cache format; a bump invalidates older caches via the
// metadata check
const Version = "1.0.0"

const (
	graphFile    = "graph.json"
	symbolsFile  = "symbols.json"
	hashesFile   = "fileHashes.json"
	metadataFile = "metadata.json"
)

// Metadata describes the persisted cache
type Metadata struct {
	ProjectHash string `json:"projectHash"`
	CreatedAt   string `json:"createdAt"`
	Version     string `json:"version"`
}

// Cache reads and writes the artifact files
type Cache struct {
	dir    string
	logger *logging.Logger
}

// New creates a cache over the given directory
func New(dir string, logger *logging.Logger) *Cache {
	return &Cache{dir: dir, logger: logger}
}

// Dir returns the cache directory
func (c *Cache) Dir() string { return c.dir }

// Save writes every artifact. Graph, symbols and metadata are
// pretty-printed for inspection; the hash table is compact.
func (c *Cache) Save(index *symbols.Index, g *graph.Store, fileHashes map[string]string, projectHash string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	if err := c.writePretty(graphFile, g); err != nil {
		return err
	}

	byID := make(map[string]*symbols.Symbol, index.Len())
	index.Each(func(s *symbols.Symbol) { byID[s.ID] = s })
	if err := c.writePretty(symbolsFile, byID); err != nil {
		return err
	}

	if err := c.writeCompact(hashesFile, fileHashes); err != nil {
		return err
	}

	meta := Metadata{
		ProjectHash: projectHash,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Version:     Version,
	}
	return c.writePretty(metadataFile, meta)
}

// LoadIndex restores the symbol index, or nil when the artifact is missing
// or unreadable
func (c *Cache) LoadIndex() *symbols.Index {
	var byID map[string]*symbols.Symbol
	if !c.read(symbolsFile, &byID) {
		return nil
	}
	index := symbols.NewIndex()
	for _, s := range byID {
		index.Put(s)
	}
	return index
}

// LoadGraph restores the graph, or nil. The legacy sectioned graph form is
// handled by the store's own decoder.
func (c *Cache) LoadGraph() *graph.Store {
	g := graph.NewStore()
	if !c.read(graphFile, g) {
		return nil
	}
	return g
}

// LoadHashes restores the per-file content hash table, or nil
func (c *Cache) LoadHashes() map[string]string {
	var hashes map[string]string
	if !c.read(hashesFile, &hashes) {
		return nil
	}
	return hashes
}

// LoadMetadata restores the metadata artifact, or nil
func (c *Cache) LoadMetadata() *Metadata {
	var meta Metadata
	if !c.read(metadataFile, &meta) {
		return nil
	}
	return &meta
}

// HashFile computes the fast content digest of a file. Change detection is
// the requirement here, not security.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashContent(data), nil
}

// HashContent digests raw content with the same function as HashFile
func HashContent(data []byte) string {
	var buf [8]byte
	sum := xxhash.Sum64(data)
	for i := 0; i < 8; i++ {
		buf[i] = byte(sum >> (56 - 8*i))
	}
	return hex.EncodeToString(buf[:])
}

// ProjectHash digests the project-configuration text cryptographically. A
// missing config file hashes the empty string, which still detects its later
// appearance.
func ProjectHash(configPath string) string {
	data, err := os.ReadFile(configPath)
	if err != nil {
		data = nil
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) writePretty(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, name), data, 0o644)
}

func (c *Cache) writeCompact(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, name), data, 0o644)
}

// read decodes one artifact; corruption or absence reads as false and the
// caller falls back to a rebuild, never to the user
func (c *Cache) read(name string, v interface{}) bool {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("cache artifact unreadable", map[string]interface{}{
			"artifact": name, "error": err.Error(),
		})
		return false
	}
	return true
}
