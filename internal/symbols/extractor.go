package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"

	"blastradius/internal/parser"
)

// Extract walks a parsed file and emits its Symbol records in source order.
// Anonymous declarations are not indexed. Overload signatures are skipped;
// only implementations produce records.
func Extract(f *parser.File) []*Symbol {
	e := &extractor{file: f}
	e.container(f.Root(), "", false)
	return e.out
}

type extractor struct {
	file *parser.File
	out  []*Symbol
}

// container walks the statements of a file, namespace body, or ambient block.
// prefix is the dotted qualified-name prefix; exported marks statements that
// inherit an export from an enclosing construct.
func (e *extractor) container(node *sitter.Node, prefix string, exported bool) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		stmt := node.NamedChild(i)
		switch stmt.Type() {
		case "export_statement":
			if decl := stmt.ChildByFieldName("declaration"); decl != nil {
				e.statement(decl, prefix, true)
			}
		case "ambient_declaration":
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				e.statement(stmt.NamedChild(j), prefix, exported)
			}
		default:
			e.statement(stmt, prefix, exported)
		}
	}
}

func (e *extractor) statement(decl *sitter.Node, prefix string, exported bool) {
	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		e.function(decl, prefix, exported)
	case "function_signature":
		// Overload signature; the implementation produces the record.
	case "class_declaration", "abstract_class_declaration":
		e.class(decl, prefix, exported)
	case "interface_declaration":
		e.iface(decl, prefix, exported)
	case "type_alias_declaration":
		e.typeAlias(decl, prefix, exported)
	case "enum_declaration":
		e.enum(decl, prefix, exported)
	case "lexical_declaration", "variable_declaration":
		e.variables(decl, prefix, exported)
	case "internal_module", "module":
		e.namespace(decl, prefix, exported)
	case "expression_statement":
		// An unexported `namespace X { ... }` parses as an expression
		// statement wrapping the module node.
		if decl.NamedChildCount() == 1 {
			if inner := decl.NamedChild(0); inner.Type() == "internal_module" || inner.Type() == "module" {
				e.namespace(inner, prefix, exported)
			}
		}
	}
}

func (e *extractor) emit(s *Symbol) {
	e.out = append(e.out, s)
}

func (e *extractor) record(node *sitter.Node, qualified string, kind Kind, exported bool, canonical string) *Symbol {
	s := &Symbol{
		ID:            ID(e.file.Path, qualified),
		Name:          lastSegment(qualified),
		QualifiedName: qualified,
		Kind:          kind,
		FilePath:      e.file.Path,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		StartPos:      int(node.StartByte()),
		EndPos:        int(node.EndByte()) - 1,
		Exported:      exported,
		SignatureHash: HashSignature(canonical),
	}
	e.emit(s)
	return s
}

func (e *extractor) function(decl *sitter.Node, prefix string, exported bool) {
	name := e.file.Text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	e.record(decl, prefix+name, KindFunction, exported, e.callableSignature(decl))
}

func (e *extractor) class(decl *sitter.Node, prefix string, exported bool) {
	name := e.file.Text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	qualified := prefix + name
	base, implements := e.heritage(decl)
	cls := e.record(decl, qualified, KindClass, exported, ClassSignature(base, implements))

	body := decl.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			mname := e.file.Text(member.ChildByFieldName("name"))
			if mname == "" {
				continue
			}
			m := e.record(member, qualified+"."+mname, KindMethod, exported, e.callableSignature(member))
			m.ParentID = cls.ID
		case "method_signature", "abstract_method_signature":
			// Overloads and abstract signatures carry no body to attribute.
		case "public_field_definition":
			fname := e.file.Text(member.ChildByFieldName("name"))
			if fname == "" {
				continue
			}
			p := e.record(member, qualified+"."+fname, KindProperty, exported, e.declaredType(member))
			p.ParentID = cls.ID
		}
	}
}

func (e *extractor) iface(decl *sitter.Node, prefix string, exported bool) {
	name := e.file.Text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	var members []string
	if body := decl.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			members = append(members, e.file.Text(body.NamedChild(i)))
		}
	}
	e.record(decl, prefix+name, KindInterface, exported, InterfaceSignature(members))
}

func (e *extractor) typeAlias(decl *sitter.Node, prefix string, exported bool) {
	name := e.file.Text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	value := CanonicalizeType(e.file.Text(decl.ChildByFieldName("value")))
	e.record(decl, prefix+name, KindTypeAlias, exported, value)
}

func (e *extractor) enum(decl *sitter.Node, prefix string, exported bool) {
	name := e.file.Text(decl.ChildByFieldName("name"))
	if name == "" {
		return
	}
	var members []Param
	if body := decl.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			m := body.NamedChild(i)
			switch m.Type() {
			case "enum_assignment":
				members = append(members, Param{
					Name: e.file.Text(m.ChildByFieldName("name")),
					Type: e.file.Text(m.ChildByFieldName("value")),
				})
			case "property_identifier":
				members = append(members, Param{Name: e.file.Text(m)})
			}
		}
	}
	e.record(decl, prefix+name, KindEnum, exported, EnumSignature(members))
}

// variables emits one record per declarator; every declarator in the
// statement shares the statement's exported flag.
func (e *extractor) variables(decl *sitter.Node, prefix string, exported bool) {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		d := decl.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue // destructuring patterns are not indexed
		}
		name := e.file.Text(nameNode)
		value := d.ChildByFieldName("value")
		canonical := ""
		if value != nil && (value.Type() == "arrow_function" || value.Type() == "function_expression" || value.Type() == "function") {
			canonical = e.callableSignature(value)
		} else {
			canonical = e.declaredType(d)
		}
		e.record(d, prefix+name, KindVariable, exported, canonical)
	}
}

func (e *extractor) namespace(decl *sitter.Node, prefix string, exported bool) {
	name := e.file.Text(decl.ChildByFieldName("name"))
	body := decl.ChildByFieldName("body")
	if name == "" || body == nil {
		return
	}
	e.container(body, prefix+name+".", exported)
}

// heritage pulls the base class and implements list from a class declaration
func (e *extractor) heritage(decl *sitter.Node) (base string, implements []string) {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		c := decl.NamedChild(i)
		if c.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			h := c.NamedChild(j)
			switch h.Type() {
			case "extends_clause":
				if v := h.ChildByFieldName("value"); v != nil {
					base = e.file.Text(v)
				} else if h.NamedChildCount() > 0 {
					base = e.file.Text(h.NamedChild(0))
				}
			case "implements_clause":
				for k := 0; k < int(h.NamedChildCount()); k++ {
					implements = append(implements, e.file.Text(h.NamedChild(k)))
				}
			}
		}
	}
	return base, implements
}

// callableSignature canonicalizes a function-like node's public surface
func (e *extractor) callableSignature(fn *sitter.Node) string {
	var params []Param
	if fp := fn.ChildByFieldName("parameters"); fp != nil {
		for i := 0; i < int(fp.NamedChildCount()); i++ {
			p := fp.NamedChild(i)
			switch p.Type() {
			case "required_parameter", "optional_parameter", "rest_parameter":
				params = append(params, Param{
					Name: e.file.Text(p.ChildByFieldName("pattern")),
					Type: e.annotationText(p),
				})
			case "identifier":
				params = append(params, Param{Name: e.file.Text(p)})
			}
		}
	}
	returnType := e.annotationText(fn)
	return CallableSignature(params, returnType)
}

// declaredType returns the canonicalized type annotation of a node, falling
// back to its initializer text when no annotation is present
func (e *extractor) declaredType(node *sitter.Node) string {
	if t := e.annotationText(node); t != "" {
		return CanonicalizeType(t)
	}
	if v := node.ChildByFieldName("value"); v != nil {
		return CanonicalizeType(e.file.Text(v))
	}
	return ""
}

// annotationText extracts the type text from a node's type annotation,
// stripping the leading ':'
func (e *extractor) annotationText(node *sitter.Node) string {
	ann := node.ChildByFieldName("type")
	if ann == nil {
		ann = node.ChildByFieldName("return_type")
	}
	if ann == nil {
		return ""
	}
	text := e.file.Text(ann)
	if len(text) > 0 && text[0] == ':' {
		text = text[1:]
	}
	return text
}

func lastSegment(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			return qualified[i+1:]
		}
	}
	return qualified
}
