package parser

import (
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Import is one imported binding in a file: the local name it is bound to,
// the name it had in the exporting module, and the raw module specifier.
type Import struct {
	LocalName    string
	ImportedName string // equals LocalName unless aliased; "default" for default imports; "*" for namespace imports
	Specifier    string
}

// Imports enumerates the import bindings declared in a file
func (f *File) Imports() []Import {
	var out []Import
	root := f.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "import_statement" {
			continue
		}
		spec := ""
		if s := stmt.ChildByFieldName("source"); s != nil {
			spec = strings.Trim(f.Text(s), `"'`)
		}
		clause := namedChildOfType(stmt, "import_clause")
		if clause == nil || spec == "" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			c := clause.NamedChild(j)
			switch c.Type() {
			case "identifier": // default import
				out = append(out, Import{LocalName: f.Text(c), ImportedName: "default", Specifier: spec})
			case "namespace_import":
				if id := namedChildOfType(c, "identifier"); id != nil {
					out = append(out, Import{LocalName: f.Text(id), ImportedName: "*", Specifier: spec})
				}
			case "named_imports":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					is := c.NamedChild(k)
					if is.Type() != "import_specifier" {
						continue
					}
					name := is.ChildByFieldName("name")
					alias := is.ChildByFieldName("alias")
					if name == nil {
						continue
					}
					imp := Import{ImportedName: f.Text(name), Specifier: spec}
					if alias != nil {
						imp.LocalName = f.Text(alias)
					} else {
						imp.LocalName = imp.ImportedName
					}
					out = append(out, imp)
				}
			}
		}
	}
	return out
}

// ResolveSpecifier maps a relative module specifier to a workspace file path
// from the set of known files. Non-relative specifiers (third-party modules)
// resolve to "". Probes the usual suffixes the host compiler accepts.
func ResolveSpecifier(fromFile, specifier string, known func(string) bool) string {
	if !strings.HasPrefix(specifier, ".") {
		return ""
	}
	base := path.Join(path.Dir(fromFile), specifier)
	candidates := []string{
		base,
		base + ".ts",
		base + ".tsx",
		path.Join(base, "index.ts"),
		path.Join(base, "index.tsx"),
	}
	for _, c := range candidates {
		if known(c) {
			return c
		}
	}
	return ""
}

func namedChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}
