package walker

import (
	sitter "github.com/smacker/go-tree-sitter"

	"blastradius/internal/graph"
	"blastradius/internal/parser"
	"blastradius/internal/symbols"
)

// Walk traverses one parsed file in pre-order with an explicit owner stack
// and records forward edges into the store. Every edge produced has its
// source in this file. Resolution failures on individual identifiers are
// silent; the walk continues.
func Walk(file *parser.File, index *symbols.Index, store *graph.Store) {
	w := &walk{
		file:     file,
		index:    index,
		store:    store,
		resolver: NewResolver(index, file),
	}
	w.container(file.Root(), "", "")
}

type walk struct {
	file     *parser.File
	index    *symbols.Index
	store    *graph.Store
	resolver *Resolver
}

func (w *walk) addEdges(owner string, targets []string) {
	if owner == "" {
		return
	}
	for _, tgt := range targets {
		if tgt != owner {
			w.store.AddEdge(owner, tgt)
		}
	}
}

// symbolID returns the indexed ID for a qualified name in this file, or ""
func (w *walk) symbolID(qualified string) string {
	id := symbols.ID(w.file.Path, qualified)
	if w.index.Has(id) {
		return id
	}
	return ""
}

// container walks file or namespace statements. prefix is the dotted
// qualified-name prefix; owner is the enclosing owner symbol, empty at the
// top level.
func (w *walk) container(node *sitter.Node, prefix, owner string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.statement(node.NamedChild(i), prefix, owner)
	}
}

func (w *walk) statement(stmt *sitter.Node, prefix, owner string) {
	switch stmt.Type() {
	case "import_statement":
		// Binding sites only.
	case "export_statement":
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			w.statement(decl, prefix, owner)
		} else {
			w.visit(stmt, owner) // re-export expressions
		}
	case "ambient_declaration":
		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			w.statement(stmt.NamedChild(j), prefix, owner)
		}
	case "internal_module", "module":
		name := w.file.Text(stmt.ChildByFieldName("name"))
		if body := stmt.ChildByFieldName("body"); body != nil && name != "" {
			w.container(body, prefix+name+".", owner)
		}
	case "expression_statement":
		// An unexported namespace block is wrapped in an expression statement.
		if inner := stmt.NamedChild(0); stmt.NamedChildCount() == 1 && (inner.Type() == "internal_module" || inner.Type() == "module") {
			w.statement(inner, prefix, owner)
		} else {
			w.visit(stmt, owner)
		}
	case "function_declaration", "generator_function_declaration":
		name := w.file.Text(stmt.ChildByFieldName("name"))
		next := w.symbolID(prefix + name)
		if next == "" {
			next = owner
		}
		w.visitChildrenSkippingName(stmt, next)
	case "class_declaration", "abstract_class_declaration":
		w.class(stmt, prefix, owner)
	case "interface_declaration", "type_alias_declaration", "enum_declaration":
		name := w.file.Text(stmt.ChildByFieldName("name"))
		next := w.symbolID(prefix + name)
		if next == "" {
			next = owner
		}
		w.visitChildrenSkippingName(stmt, next)
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(stmt.NamedChildCount()); i++ {
			d := stmt.NamedChild(i)
			if d.Type() != "variable_declarator" {
				w.visit(d, owner)
				continue
			}
			nameNode := d.ChildByFieldName("name")
			next := owner
			if nameNode != nil && nameNode.Type() == "identifier" {
				if id := w.symbolID(prefix + w.file.Text(nameNode)); id != "" {
					next = id
				}
			}
			w.visitChildrenSkippingName(d, next)
		}
	default:
		w.visit(stmt, owner)
	}
}

// class walks a class declaration: heritage references belong to the class
// symbol, constructor bodies are attributed to the class, and each method or
// property owns its own subtree.
func (w *walk) class(stmt *sitter.Node, prefix, owner string) {
	name := w.file.Text(stmt.ChildByFieldName("name"))
	clsID := w.symbolID(prefix + name)
	if clsID == "" {
		clsID = owner
	}

	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		c := stmt.NamedChild(i)
		switch c.Type() {
		case "class_heritage":
			w.visit(c, clsID)
		case "class_body":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				member := c.NamedChild(j)
				switch member.Type() {
				case "method_definition":
					mname := w.file.Text(member.ChildByFieldName("name"))
					next := clsID
					if mname != "constructor" {
						if id := w.symbolID(prefix + name + "." + mname); id != "" {
							next = id
						}
					}
					w.visitChildrenSkippingName(member, next)
				case "public_field_definition":
					fname := w.file.Text(member.ChildByFieldName("name"))
					next := clsID
					if id := w.symbolID(prefix + name + "." + fname); id != "" {
						next = id
					}
					w.visitChildrenSkippingName(member, next)
				default:
					w.visit(member, clsID)
				}
			}
		}
	}
}

// visit walks an arbitrary subtree, resolving identifier uses against the
// current owner
func (w *walk) visit(node *sitter.Node, owner string) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "identifier", "type_identifier":
		if w.isBindingSite(node) {
			return
		}
		w.addEdges(owner, w.resolver.ResolveName(w.file.Text(node)))
	case "member_expression":
		object := node.ChildByFieldName("object")
		property := node.ChildByFieldName("property")
		if object != nil && property != nil && object.Type() == "identifier" {
			w.addEdges(owner, w.resolver.ResolveMember(w.file.Text(object), w.file.Text(property)))
		}
		w.visit(object, owner)
		// The property side resolves only through its object; a bare walk
		// would mistake it for a freestanding identifier.
	case "import_statement":
		return
	default:
		for i := 0; i < int(node.NamedChildCount()); i++ {
			w.visit(node.NamedChild(i), owner)
		}
	}
}

// visitChildrenSkippingName walks a declaration's children without treating
// its own name as a reference
func (w *walk) visitChildrenSkippingName(decl *sitter.Node, owner string) {
	nameNode := decl.ChildByFieldName("name")
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		c := decl.NamedChild(i)
		if nameNode != nil && sameNode(c, nameNode) {
			continue
		}
		w.visit(c, owner)
	}
}

// isBindingSite reports whether the identifier occupies its parent's
// declaration-name slot (or a parameter/import binding), i.e. it introduces
// a name rather than using one.
func (w *walk) isBindingSite(node *sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	if name := parent.ChildByFieldName("name"); name != nil && sameNode(name, node) {
		return true
	}
	if pattern := parent.ChildByFieldName("pattern"); pattern != nil && sameNode(pattern, node) {
		return true
	}
	switch parent.Type() {
	case "import_specifier", "namespace_import", "import_clause",
		"formal_parameters", "required_parameter", "optional_parameter", "rest_parameter":
		return true
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
