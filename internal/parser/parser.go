// Package parser is the thin boundary over the external TypeScript parser.
// It owns parsed sources, supports in-memory overlays that shadow the disk,
// and exposes the AST pieces the extractor and reference walker consume.
package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"blastradius/internal/errors"
	"blastradius/internal/logging"
)

// File is a parsed source file
type File struct {
	Path   string // normalized, forward slashes
	Source []byte
	Tree   *sitter.Tree
}

// Root returns the root AST node
func (f *File) Root() *sitter.Node {
	return f.Tree.RootNode()
}

// Text returns the source text of a node
func (f *File) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(f.Source[n.StartByte():n.EndByte()])
}

// Adapter parses TypeScript sources and caches the parsed files
type Adapter struct {
	files    map[string]*File
	overlays map[string][]byte
	logger   *logging.Logger
}

// NewAdapter creates a parser adapter
func NewAdapter(logger *logging.Logger) *Adapter {
	return &Adapter{
		files:    make(map[string]*File),
		overlays: make(map[string][]byte),
		logger:   logger,
	}
}

func languageFor(path string) *sitter.Language {
	if strings.HasSuffix(path, ".tsx") {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

// ParseFile parses path, honoring any overlay registered for it. The parsed
// file replaces a previously cached parse of the same path.
func (a *Adapter) ParseFile(ctx context.Context, path string) (*File, error) {
	norm := filepath.ToSlash(path)
	src, ok := a.overlays[norm]
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ParseFailed, "cannot read source", err).
				WithDetails(map[string]string{"path": norm})
		}
		src = data
	}
	return a.parse(ctx, norm, src)
}

// ParseSource parses src as the content of path and registers it as an
// overlay so later ParseFile calls see the same text instead of the disk.
func (a *Adapter) ParseSource(ctx context.Context, path string, src []byte) (*File, error) {
	norm := filepath.ToSlash(path)
	a.overlays[norm] = src
	return a.parse(ctx, norm, src)
}

func (a *Adapter) parse(ctx context.Context, norm string, src []byte) (*File, error) {
	p := sitter.NewParser()
	p.SetLanguage(languageFor(norm))
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(errors.ParseFailed, "parse failed", err).
			WithDetails(map[string]string{"path": norm})
	}
	f := &File{Path: norm, Source: src, Tree: tree}
	a.files[norm] = f
	return f, nil
}

// Get returns the cached parse for path, or nil
func (a *Adapter) Get(path string) *File {
	return a.files[filepath.ToSlash(path)]
}

// Drop forgets the cached parse and overlay for path
func (a *Adapter) Drop(path string) {
	norm := filepath.ToSlash(path)
	delete(a.files, norm)
	delete(a.overlays, norm)
}

// ClearOverlay removes only the overlay, so the next parse reads the disk
func (a *Adapter) ClearOverlay(path string) {
	delete(a.overlays, filepath.ToSlash(path))
}

// Paths returns the cached file paths
func (a *Adapter) Paths() []string {
	out := make([]string, 0, len(a.files))
	for p := range a.files {
		out = append(out, p)
	}
	return out
}
