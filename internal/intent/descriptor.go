// Package intent turns a natural-language change description into impact
// roots: an external oracle produces a structured descriptor, a two-pass
// resolver maps its hints onto live symbols, and a virtual diff seeds the
// blast-radius engine.
package intent

import (
	"context"
	"sort"
	"strings"

	"blastradius/internal/symbols"
)

// ChangeType classifies what the described change does
type ChangeType string

const (
	ChangeAdd      ChangeType = "add"
	ChangeModify   ChangeType = "modify"
	ChangeDelete   ChangeType = "delete"
	ChangeRefactor ChangeType = "refactor"
	ChangeUnknown  ChangeType = "unknown"
)

// Descriptor is the oracle's structured reading of a prompt. Hints are
// expected to be verbatim names from the grounding; non-string entries have
// already been filtered out.
type Descriptor struct {
	Prompt           string     `json:"prompt"`
	ChangeType       ChangeType `json:"changeType"`
	SymbolHints      []string   `json:"symbolHints"`
	FileHints        []string   `json:"fileHints"`
	AffectsPublicAPI bool       `json:"affectsPublicApi"`
	Summary          string     `json:"summary"`
}

// Oracle produces descriptors from raw prompts. The call honors ctx
// cancellation; it is the only externally cancellable operation in the
// system.
type Oracle interface {
	Describe(ctx context.Context, prompt string, grounding *Grounding) (*Descriptor, error)
}

// SymbolDescriptor is one grounding entry shown to the oracle
type SymbolDescriptor struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	File     string `json:"file"`
	Exported bool   `json:"exported"`
}

// Grounding bounds what the oracle may reference. Hints outside it fail the
// resolver and the relevance gate.
type Grounding struct {
	Files   []string           `json:"files"`
	Symbols []SymbolDescriptor `json:"symbols"`
}

// BuildGrounding assembles the bounded grounding context: workspace-relative
// file paths and symbol descriptors, exported symbols first, capped at
// maxFiles and maxSymbols.
func BuildGrounding(index *symbols.Index, projectRoot string, maxFiles, maxSymbols int) *Grounding {
	g := &Grounding{}

	fileSet := index.Files()
	files := make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, relativePath(projectRoot, f))
	}
	sort.Strings(files)
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}
	g.Files = files

	var all []*symbols.Symbol
	index.Each(func(s *symbols.Symbol) { all = append(all, s) })
	sort.Slice(all, func(i, j int) bool {
		if all[i].Exported != all[j].Exported {
			return all[i].Exported
		}
		return all[i].ID < all[j].ID
	})
	for _, s := range all {
		if len(g.Symbols) >= maxSymbols {
			break
		}
		g.Symbols = append(g.Symbols, SymbolDescriptor{
			Name:     s.QualifiedName,
			Kind:     string(s.Kind),
			File:     relativePath(projectRoot, s.FilePath),
			Exported: s.Exported,
		})
	}
	return g
}

// FilterHints keeps only string-typed hints from a raw oracle payload
func FilterHints(raw []interface{}) []string {
	var out []string
	for _, h := range raw {
		if s, ok := h.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func relativePath(root, path string) string {
	root = symbols.NormalizePath(root)
	path = symbols.NormalizePath(path)
	if strings.HasPrefix(path, root) {
		return strings.TrimPrefix(strings.TrimPrefix(path, root), "/")
	}
	return path
}
