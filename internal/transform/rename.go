package transform

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
)

// pythonReserved are target keywords an identifier may not use.
var pythonReserved = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true,
	"in": true, "is": true, "lambda": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true, "try": true,
	"while": true, "with": true, "yield": true,
}

// pythonCollisions are target builtins and translator-reserved names whose
// capture by user code would change the meaning of emitted helper calls.
var pythonCollisions = map[string]bool{
	"print": true, "len": true, "str": true, "repr": true, "list": true,
	"dict": true, "set": true, "tuple": true, "type": true, "range": true,
	"object": true, "id": true, "input": true, "open": true, "min": true,
	"max": true, "sum": true, "abs": true, "map": true, "filter": true,
	"zip": true, "iter": true, "next": true, "vars": true, "dir": true,
	"getattr": true, "setattr": true, "delattr": true, "hasattr": true,
	"isinstance": true, "issubclass": true, "callable": true, "super": true,
	"property": true, "staticmethod": true, "classmethod": true,
	"bool": true, "int": true, "float": true, "complex": true,
	"bytes": true, "bytearray": true, "frozenset": true, "enumerate": true,
	"reversed": true, "sorted": true, "round": true, "divmod": true,
	"pow": true, "format": true, "chr": true, "ord": true, "hash": true,
	"exec": true, "eval": true, "compile": true, "globals": true,
	"locals": true, "self": true,
	// Translator-owned names.
	"undefined": true, "JsError": true,
	"_exports": true, "_default": true, "_module_exports": true,
}

// renameSuffix is the stable suffix appended to colliding identifiers.
const renameSuffix = "_js"

// needsRename reports whether a source identifier collides with a target
// reserved word, a shadow-sensitive builtin, or a runtime helper name.
// Identifiers are NFC-normalized first, as the source language requires.
func needsRename(name string) bool {
	name = norm.NFC.String(name)
	if pythonReserved[name] || pythonCollisions[name] {
		return true
	}
	return strings.HasPrefix(name, "js_")
}

// renameBinding returns the target-side name for a binding, computing and
// recording the rewrite once. Property names never pass through here.
func (t *Transformer) renameBinding(id analyzer.BindingID) string {
	if cached, ok := t.renames[id]; ok {
		return cached
	}
	b := t.analysis.Binding(id)
	name := norm.NFC.String(b.Name)
	if needsRename(name) {
		renamed := name + renameSuffix
		diag.ReportInfo(t.reporter, diag.CodeRename, b.Decl,
			fmt.Sprintf("%q renamed to %q to avoid a target-language collision", name, renamed))
		name = renamed
	} else if t.shadowsOuter(b) {
		// The target has no block scoping: a block-scoped binding that
		// shadows an outer name is uniquified so the outer value survives.
		name = fmt.Sprintf("%s_%d", name, b.Scope)
	}
	t.renames[id] = name
	return name
}

// shadowsOuter reports whether a block-scoped binding hides a same-named
// binding in an enclosing scope.
func (t *Transformer) shadowsOuter(b *analyzer.Binding) bool {
	switch b.Kind {
	case analyzer.BindLet, analyzer.BindConst, analyzer.BindClass, analyzer.BindCatchParam:
	default:
		return false
	}
	scope := t.analysis.Scope(b.Scope)
	if scope.Kind == analyzer.ScopeFunction || scope.Kind == analyzer.ScopeModule {
		return false
	}
	for id := scope.Parent; id != analyzer.NoScopeID; id = t.analysis.Scope(id).Parent {
		for _, otherID := range t.analysis.Scope(id).Bindings() {
			if t.analysis.Binding(otherID).Name == b.Name {
				return true
			}
		}
	}
	return false
}

// renameFree returns the target-side spelling for a name with no binding
// (unresolved globals). Facade globals keep their name; colliding names
// get the suffix.
func (t *Transformer) renameFree(name string) string {
	name = norm.NFC.String(name)
	if facadeGlobals[name] {
		return t.runtime.Use(name)
	}
	if needsRename(name) {
		return name + renameSuffix
	}
	return name
}
