// Package export serializes the live index and graph for external tooling:
// a SCIP protobuf index consumable by code-intelligence clients, and a YAML
// rendering of analysis results.
package export

import (
	"os"
	"sort"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"

	"blastradius/internal/engine"
	"blastradius/internal/graph"
	"blastradius/internal/symbols"
)

// toolName identifies this exporter in SCIP metadata
const toolName = "blastradius"

// WriteSCIP writes the symbol index and forward edges as a SCIP index file.
// Definitions become definition occurrences; every forward edge becomes a
// reference occurrence at the source symbol's location.
func WriteSCIP(path, projectRoot, version string, index *symbols.Index, g *graph.Store) error {
	idx := &scippb.Index{
		Metadata: &scippb.Metadata{
			ToolInfo:             &scippb.ToolInfo{Name: toolName, Version: version},
			ProjectRoot:          "file://" + symbols.NormalizePath(projectRoot),
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
	}

	byFile := make(map[string][]*symbols.Symbol)
	index.Each(func(s *symbols.Symbol) {
		byFile[s.FilePath] = append(byFile[s.FilePath], s)
	})

	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		syms := byFile[file]
		sort.Slice(syms, func(i, j int) bool { return syms[i].ID < syms[j].ID })

		doc := &scippb.Document{
			RelativePath: relativeTo(projectRoot, file),
			Language:     "typescript",
		}
		for _, s := range syms {
			scipSym := scipSymbol(s)
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:      scipSym,
				DisplayName: s.QualifiedName,
				Kind:        scipKind(s.Kind),
			})
			doc.Occurrences = append(doc.Occurrences, &scippb.Occurrence{
				Symbol:      scipSym,
				SymbolRoles: int32(scippb.SymbolRole_Definition),
				Range:       []int32{int32(s.StartLine - 1), 0, int32(s.EndLine - 1), 0},
			})
			for _, tgt := range g.Dependencies(s.ID) {
				target := index.Get(tgt)
				if target == nil {
					continue
				}
				doc.Occurrences = append(doc.Occurrences, &scippb.Occurrence{
					Symbol: scipSymbol(target),
					Range:  []int32{int32(s.StartLine - 1), 0, int32(s.StartLine - 1), 0},
				})
			}
		}
		idx.Documents = append(idx.Documents, doc)
	}

	data, err := proto.Marshal(idx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteResultYAML renders a traversal result as YAML
func WriteResultYAML(path string, result *engine.Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// scipSymbol renders a blastradius symbol ID in SCIP symbol syntax
func scipSymbol(s *symbols.Symbol) string {
	descriptor := strings.ReplaceAll(s.QualifiedName, ".", "/")
	suffix := "."
	switch s.Kind {
	case symbols.KindFunction, symbols.KindMethod:
		suffix = "()."
	}
	return "blastradius ts-workspace . . " + descriptor + suffix
}

func scipKind(k symbols.Kind) scippb.SymbolInformation_Kind {
	switch k {
	case symbols.KindFunction:
		return scippb.SymbolInformation_Function
	case symbols.KindClass:
		return scippb.SymbolInformation_Class
	case symbols.KindInterface:
		return scippb.SymbolInformation_Interface
	case symbols.KindTypeAlias:
		return scippb.SymbolInformation_TypeAlias
	case symbols.KindEnum:
		return scippb.SymbolInformation_Enum
	case symbols.KindMethod:
		return scippb.SymbolInformation_Method
	case symbols.KindProperty:
		return scippb.SymbolInformation_Property
	default:
		return scippb.SymbolInformation_Variable
	}
}

func relativeTo(root, path string) string {
	root = symbols.NormalizePath(root)
	if strings.HasPrefix(path, root+"/") {
		return strings.TrimPrefix(path, root+"/")
	}
	return path
}
