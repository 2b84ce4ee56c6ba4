package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"js2py/internal/jsast"
)

// importStatement bridges the four ESM import forms: default, named,
// namespace, and side-effect-only.
func (b *bridge) importStatement(n *sitter.Node) *jsast.Node {
	stmt := b.node(jsast.KindImportDecl, n)
	if src := n.ChildByFieldName("source"); src != nil {
		stmt.Source = unquoteString(b.text(src))
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			clause := c.NamedChild(j)
			switch clause.Type() {
			case "identifier":
				spec := b.node(jsast.KindImportSpec, clause)
				spec.DeclKind = "default"
				spec.Name = b.text(clause)
				stmt.Elements = append(stmt.Elements, spec)
			case "namespace_import":
				spec := b.node(jsast.KindImportSpec, clause)
				spec.DeclKind = "namespace"
				if clause.NamedChildCount() > 0 {
					spec.Name = b.text(clause.NamedChild(0))
				}
				stmt.Elements = append(stmt.Elements, spec)
			case "named_imports":
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					is := clause.NamedChild(k)
					if is.Type() != "import_specifier" {
						continue
					}
					spec := b.node(jsast.KindImportSpec, is)
					spec.DeclKind = "named"
					if name := is.ChildByFieldName("name"); name != nil {
						spec.Str = b.text(name) // imported name
						spec.Name = spec.Str    // local name, unless aliased
					}
					if alias := is.ChildByFieldName("alias"); alias != nil {
						spec.Name = b.text(alias)
					}
					stmt.Elements = append(stmt.Elements, spec)
				}
			}
		}
	}
	return stmt
}

// exportStatement bridges `export default`, named exports with or without a
// declaration, and `export * from`.
func (b *bridge) exportStatement(n *sitter.Node) *jsast.Node {
	isDefault := false
	isStar := false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			continue
		}
		switch b.text(c) {
		case "default":
			isDefault = true
		case "*":
			isStar = true
		}
	}

	if isStar {
		stmt := b.node(jsast.KindExportAll, n)
		if src := n.ChildByFieldName("source"); src != nil {
			stmt.Source = unquoteString(b.text(src))
		}
		return stmt
	}

	if isDefault {
		stmt := b.node(jsast.KindExportDefault, n)
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			stmt.Argument = b.declarationOrExpr(decl)
		} else if value := n.ChildByFieldName("value"); value != nil {
			stmt.Argument = b.expression(value)
		} else {
			// Older grammars attach the exported expression as the first
			// named child.
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				if c.Type() == "comment" {
					continue
				}
				stmt.Argument = b.declarationOrExpr(c)
				break
			}
		}
		return stmt
	}

	stmt := b.node(jsast.KindExportNamed, n)
	if src := n.ChildByFieldName("source"); src != nil {
		stmt.Source = unquoteString(b.text(src))
	}
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		stmt.Argument = b.statement(decl)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			es := c.NamedChild(j)
			if es.Type() != "export_specifier" {
				continue
			}
			spec := b.node(jsast.KindExportSpec, es)
			if name := es.ChildByFieldName("name"); name != nil {
				spec.Str = b.text(name) // local name
				spec.Name = spec.Str    // exported name, unless aliased
			}
			if alias := es.ChildByFieldName("alias"); alias != nil {
				spec.Name = b.text(alias)
			}
			stmt.Elements = append(stmt.Elements, spec)
		}
	}
	return stmt
}

// declarationOrExpr bridges an export-default payload, which may be a
// declaration or a plain expression.
func (b *bridge) declarationOrExpr(n *sitter.Node) *jsast.Node {
	switch n.Type() {
	case "function_declaration":
		return b.functionLike(n, jsast.KindFunctionDecl)
	case "class_declaration":
		return b.classLike(n, jsast.KindClassDecl)
	case "variable_declaration", "lexical_declaration":
		return b.varDeclaration(n)
	}
	return b.expression(n)
}
