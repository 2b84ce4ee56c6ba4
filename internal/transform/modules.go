package transform

import (
	"strings"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/pyast"
)

// moduleExportsName is the conventional dict CommonJS exports collect
// into; the emitter's footer publishes it.
const moduleExportsName = "_module_exports"

// defaultExportName holds an ES-module default export until the footer.
const defaultExportName = "_default"

// ExportEntry is one named export: the public name and the target-side
// local it reads from.
type ExportEntry struct {
	Exported string
	Local    string
}

// ExportsRecord collects everything the module publishes; the emitter
// renders the footer from it iff it is non-empty. When a mixed-shape file
// sets both flags, the ES-module footer wins.
type ExportsRecord struct {
	CommonJS   bool
	ESM        bool
	HasDefault bool
	Named      []ExportEntry
}

// Empty reports whether there is nothing to publish.
func (r *ExportsRecord) Empty() bool {
	return r == nil || (!r.CommonJS && !r.HasDefault && len(r.Named) == 0)
}

// addNamed records a named export once; later writes of the same name win.
func (r *ExportsRecord) addNamed(exported, local string) {
	for i := range r.Named {
		if r.Named[i].Exported == exported {
			r.Named[i].Local = local
			return
		}
	}
	r.Named = append(r.Named, ExportEntry{Exported: exported, Local: local})
}

// moduleName maps a source module specifier onto a target import name:
// relative prefixes and the script extension drop, path separators and
// dashes flatten to underscores.
func moduleName(spec string) string {
	s := spec
	s = strings.TrimPrefix(s, "node:")
	for strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
		s = strings.TrimPrefix(s, "./")
		s = strings.TrimPrefix(s, "../")
	}
	for _, ext := range []string{".js", ".mjs", ".cjs", ".json"} {
		s = strings.TrimSuffix(s, ext)
	}
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "@", "")
	if s == "" {
		s = "_module"
	}
	return s
}

// stmtImport lowers the four ESM import forms.
func (t *Transformer) stmtImport(c *ctx, n *jsast.Node) []*pyast.Node {
	module := moduleName(n.Source)
	var out []*pyast.Node
	var named []pyast.Alias

	for _, spec := range n.Elements {
		local := t.specLocalName(spec)
		switch spec.DeclKind {
		case "default":
			alias := local
			if alias == module {
				alias = ""
			}
			out = append(out, &pyast.Node{
				Kind:    pyast.KindImport,
				Span:    spec.Span,
				Aliases: []pyast.Alias{{Name: module, AsName: alias}},
			})
		case "namespace":
			out = append(out, &pyast.Node{
				Kind:    pyast.KindImport,
				Span:    spec.Span,
				Aliases: []pyast.Alias{{Name: module, AsName: local}},
			})
		case "named":
			asName := local
			if asName == spec.Str {
				asName = ""
			}
			named = append(named, pyast.Alias{Name: spec.Str, AsName: asName})
		}
	}

	if len(named) > 0 {
		out = append(out, &pyast.Node{
			Kind:    pyast.KindImportFrom,
			Span:    n.Span,
			Name:    module,
			Aliases: named,
		})
	}
	if len(out) == 0 {
		// Side-effect-only import.
		out = append(out, &pyast.Node{
			Kind:    pyast.KindImport,
			Span:    n.Span,
			Aliases: []pyast.Alias{{Name: module}},
		})
	}
	return out
}

// specLocalName resolves an import specifier's local binding name through
// the rename map.
func (t *Transformer) specLocalName(spec *jsast.Node) string {
	if id, ok := t.analysis.BindingOf[spec.ID]; ok {
		return t.renameBinding(id)
	}
	return t.renameFree(spec.Name)
}

func (t *Transformer) stmtExportNamed(c *ctx, n *jsast.Node) []*pyast.Node {
	t.exports.ESM = true
	// Re-export from another module: import the names, then publish.
	if n.Source != "" {
		module := moduleName(n.Source)
		var aliases []pyast.Alias
		for _, spec := range n.Elements {
			asName := ""
			if spec.Name != spec.Str {
				asName = spec.Name
			}
			aliases = append(aliases, pyast.Alias{Name: spec.Str, AsName: asName})
			t.exports.addNamed(spec.Name, spec.Name)
		}
		return []*pyast.Node{{
			Kind:    pyast.KindImportFrom,
			Span:    n.Span,
			Name:    module,
			Aliases: aliases,
		}}
	}

	// export <declaration>
	if n.Argument != nil {
		out := t.stmt(c, n.Argument)
		t.recordDeclExports(n.Argument)
		return out
	}

	// export { a, b as c }
	for _, spec := range n.Elements {
		local := spec.Str
		if id, ok := t.analysis.BindingOf[spec.ID]; ok {
			local = t.renameBinding(id)
		} else {
			local = t.renameFree(local)
		}
		t.exports.addNamed(spec.Name, local)
	}
	return nil
}

// recordDeclExports registers the names an exported declaration binds.
func (t *Transformer) recordDeclExports(decl *jsast.Node) {
	switch decl.Kind {
	case jsast.KindFunctionDecl, jsast.KindClassDecl:
		if decl.Name != "" {
			t.exports.addNamed(decl.Name, t.declaredName(decl))
		}
	case jsast.KindVarDecl:
		for _, d := range decl.Elements {
			if d.Target != nil && d.Target.Kind == jsast.KindIdent {
				t.exports.addNamed(d.Target.Name, t.targetName(d.Target))
			}
		}
	}
}

func (t *Transformer) stmtExportDefault(c *ctx, n *jsast.Node) []*pyast.Node {
	arg := n.Argument
	if arg == nil {
		t.warn(n, diag.CodeLowering, "export default without a declaration")
		return nil
	}
	t.exports.ESM = true
	t.exports.HasDefault = true

	switch arg.Kind {
	case jsast.KindFunctionDecl, jsast.KindClassDecl:
		if arg.Name != "" {
			out := t.stmt(c, arg)
			out = append(out, pyast.NewAssign(
				pyast.NewName(defaultExportName), pyast.NewName(t.declaredName(arg))))
			return out
		}
		// Anonymous default declarations become the default name itself.
		if arg.Kind == jsast.KindFunctionDecl {
			return []*pyast.Node{t.functionDef(c, arg, defaultExportName)}
		}
		var out []*pyast.Node
		sub := *c
		sub.stmts = &out
		cls := t.classDef(&sub, arg, defaultExportName)
		return append(out, cls)
	}

	var out []*pyast.Node
	sub := *c
	sub.stmts = &out
	value := t.expr(&sub, arg)
	return append(out, pyast.NewAssign(pyast.NewName(defaultExportName), value).At(n.Span))
}

func (t *Transformer) stmtExportAll(c *ctx, n *jsast.Node) []*pyast.Node {
	out := t.loweringFailure(n, "export * re-export requires manual flattening")
	return append(out, &pyast.Node{
		Kind:    pyast.KindImport,
		Span:    n.Span,
		Aliases: []pyast.Alias{{Name: moduleName(n.Source)}},
	})
}

// requireAlias recognizes require("m") and hoists an aliased import for
// it; repeated requires of one module share the alias.
func (t *Transformer) requireAlias(n *jsast.Node) (string, bool) {
	if len(n.Args) != 1 {
		return "", false
	}
	arg := n.Args[0].Unparen()
	if arg == nil || arg.Kind != jsast.KindStringLit {
		return "", false
	}
	spec := arg.Str
	if alias, ok := t.requireAliases[spec]; ok {
		return alias, true
	}
	alias := t.newTemp("m")
	t.requireAliases[spec] = alias
	t.requireImports = append(t.requireImports, &pyast.Node{
		Kind:    pyast.KindImport,
		Span:    n.Span,
		Aliases: []pyast.Alias{{Name: moduleName(spec), AsName: alias}},
	})
	return alias, true
}

// flattenRequire turns `const m = require("m")` into a hoisted import and
// `const {a, b: c} = require("m")` into a hoisted from-import when the
// pattern is simple enough.
func (t *Transformer) flattenRequire(c *ctx, target, init *jsast.Node) (*pyast.Node, bool) {
	call := init.Unparen()
	if call == nil || call.Kind != jsast.KindCall {
		return nil, false
	}
	callee := call.Callee.Unparen()
	if callee == nil || callee.Kind != jsast.KindIdent || callee.Name != "require" {
		return nil, false
	}
	if len(call.Args) != 1 {
		return nil, false
	}
	arg := call.Args[0].Unparen()
	if arg == nil || arg.Kind != jsast.KindStringLit {
		return nil, false
	}

	if target != nil && target.Kind == jsast.KindIdent {
		module := moduleName(arg.Str)
		local := t.targetName(target)
		asName := local
		if asName == module {
			asName = ""
		}
		return &pyast.Node{
			Kind:    pyast.KindImport,
			Span:    init.Span,
			Aliases: []pyast.Alias{{Name: module, AsName: asName}},
		}, true
	}

	if target == nil || target.Kind != jsast.KindObjectPattern {
		return nil, false
	}

	var aliases []pyast.Alias
	for _, e := range target.Elements {
		if e == nil || e.Kind != jsast.KindProperty || e.Computed {
			return nil, false
		}
		if e.Key == nil || e.Key.Kind != jsast.KindIdent ||
			e.Value == nil || e.Value.Kind != jsast.KindIdent {
			return nil, false
		}
		local := t.targetName(e.Value)
		asName := ""
		if local != e.Key.Name {
			asName = local
		}
		aliases = append(aliases, pyast.Alias{Name: e.Key.Name, AsName: asName})
	}
	if len(aliases) == 0 {
		return nil, false
	}
	return &pyast.Node{
		Kind:    pyast.KindImportFrom,
		Span:    init.Span,
		Name:    moduleName(arg.Str),
		Aliases: aliases,
	}, true
}

// isModuleExportsWrite matches CommonJS export targets: module.exports,
// module.exports.x, and exports.x.
func isModuleExportsWrite(analysis *analyzer.Result, target *jsast.Node) bool {
	if analysis.Shape != analyzer.ShapeCommonJS && analysis.Shape != analyzer.ShapeMixed {
		return false
	}
	if target == nil || target.Kind != jsast.KindMember {
		return false
	}
	if isModuleExportsRead(target) {
		return true
	}
	obj := target.Object.Unparen()
	if obj == nil {
		return false
	}
	if obj.Kind == jsast.KindIdent && obj.Name == "exports" {
		return true
	}
	return obj.Kind == jsast.KindMember && isModuleExportsRead(obj)
}

// commonJSExportWrite lowers a CommonJS export store. `module.exports =
// {a, b}` additionally records the named exports for the footer.
func (t *Transformer) commonJSExportWrite(c *ctx, target *jsast.Node, value *pyast.Node) []*pyast.Node {
	t.exports.CommonJS = true

	// module.exports = value
	if isModuleExportsRead(target) {
		t.recordObjectExports(targetAssignedObject(c, target))
		return []*pyast.Node{pyast.NewAssign(pyast.NewName(moduleExportsName), value)}
	}

	// exports.x = value / module.exports.x = value
	var key *pyast.Node
	if target.Computed {
		key = t.expr(c, target.Property)
	} else if target.Property != nil {
		key = pyast.NewStr(target.Property.Name)
		t.exports.addNamed(target.Property.Name, "")
	}
	return []*pyast.Node{pyast.NewExprStmt(t.runtime.Call(HelperSetIndex,
		pyast.NewName(moduleExportsName), key, value))}
}

// targetAssignedObject digs the object literal assigned to module.exports
// out of the enclosing assignment, when there is one. The transformer
// stores it on the ctx while lowering the assignment.
func targetAssignedObject(c *ctx, target *jsast.Node) *jsast.Node {
	return c.cjsAssignedObject
}

// recordObjectExports registers the shorthand and identifier-valued
// properties of `module.exports = {…}` as named exports.
func (t *Transformer) recordObjectExports(obj *jsast.Node) {
	if obj == nil || obj.Kind != jsast.KindObjectLit {
		return
	}
	for _, p := range obj.Elements {
		if p == nil || p.Kind != jsast.KindProperty || p.Computed {
			continue
		}
		if p.Key == nil || p.Key.Kind != jsast.KindIdent {
			continue
		}
		local := ""
		if v := p.Value.Unparen(); v != nil && v.Kind == jsast.KindIdent {
			local = t.targetName(v)
		}
		t.exports.addNamed(p.Key.Name, local)
	}
}
