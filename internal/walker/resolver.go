// Package walker records forward edges from each enclosing owner symbol to
// the declarations its body references. Resolution targets only workspace
// symbols; third-party modules and the standard library never produce edges.
package walker

import (
	"blastradius/internal/parser"
	"blastradius/internal/symbols"
)

// Resolver resolves identifier uses in one file to indexed symbol IDs. It is
// built once per walk from the file's import table and the live index.
type Resolver struct {
	index   *symbols.Index
	file    *parser.File
	local   map[string][]string       // simple name → ids declared in this file
	imports map[string]resolvedImport // local binding → exporting file
}

type resolvedImport struct {
	targetFile   string
	importedName string // "*" for namespace imports
}

// NewResolver builds the resolution context for a file
func NewResolver(index *symbols.Index, file *parser.File) *Resolver {
	r := &Resolver{
		index:   index,
		file:    file,
		local:   make(map[string][]string),
		imports: make(map[string]resolvedImport),
	}

	for _, s := range index.FileSymbols(file.Path) {
		r.local[s.Name] = append(r.local[s.Name], s.ID)
	}

	files := index.Files()
	known := func(p string) bool {
		_, ok := files[p]
		return ok
	}
	for _, imp := range file.Imports() {
		target := parser.ResolveSpecifier(file.Path, imp.Specifier, known)
		if target == "" {
			continue // third-party or unresolvable specifier
		}
		r.imports[imp.LocalName] = resolvedImport{
			targetFile:   target,
			importedName: imp.ImportedName,
		}
	}
	return r
}

// ResolveName resolves a plain identifier use to declaration IDs
func (r *Resolver) ResolveName(name string) []string {
	if ids, ok := r.local[name]; ok {
		return ids
	}
	imp, ok := r.imports[name]
	if !ok || imp.importedName == "*" {
		return nil
	}
	return r.symbolsNamed(imp.targetFile, imp.importedName)
}

// ResolveMember resolves obj.prop accesses: members of local classes and
// namespaces, and names reached through a namespace import. Enum members are
// not indexed, so an enum member access resolves nothing here.
func (r *Resolver) ResolveMember(object, property string) []string {
	if imp, ok := r.imports[object]; ok && imp.importedName == "*" {
		return r.symbolsNamed(imp.targetFile, property)
	}

	var out []string
	for _, ownerID := range r.ResolveName(object) {
		owner := r.index.Get(ownerID)
		if owner == nil {
			continue
		}
		memberID := symbols.ID(owner.FilePath, owner.QualifiedName+"."+property)
		if r.index.Has(memberID) {
			out = append(out, memberID)
		}
	}
	// Namespaces have no symbol of their own; their members carry the
	// dotted qualified name in this file.
	if len(out) == 0 {
		if memberID := symbols.ID(r.file.Path, object+"."+property); r.index.Has(memberID) {
			out = append(out, memberID)
		}
	}
	return out
}

// symbolsNamed finds symbols in a file by simple or qualified name. A
// "default" import matches nothing unless the file declares that name.
func (r *Resolver) symbolsNamed(filePath, name string) []string {
	var out []string
	for _, s := range r.index.FileSymbols(filePath) {
		if s.QualifiedName == name || (s.Name == name && s.ParentID == "") {
			out = append(out, s.ID)
		}
	}
	return out
}
