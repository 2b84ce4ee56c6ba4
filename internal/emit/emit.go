package emit

import (
	"fmt"
	"strings"

	"js2py/internal/pyast"
	"js2py/internal/transform"
)

// Options configures one emit run.
type Options struct {
	// Runtime decides whether the import preamble appears and which
	// helpers it names.
	Runtime *transform.RuntimeSet
	// Exports renders the module footer when non-empty.
	Exports *transform.ExportsRecord
}

// Emit renders a target module to source text: preamble, body, footer.
func Emit(module *pyast.Node, opts Options) string {
	w := &writer{}

	if opts.Runtime != nil && !opts.Runtime.Empty() {
		w.line(fmt.Sprintf("from %s import %s",
			transform.RuntimeModule, strings.Join(opts.Runtime.Names(), ", ")))
		w.blank()
	}

	e := &emitter{w: w}
	e.stmts(module.Body, true)

	if opts.Exports != nil && !opts.Exports.Empty() {
		w.blank()
		e.footer(opts.Exports)
	}

	out := w.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

type emitter struct {
	w *writer
}

// stmts prints a statement list; at the top level, defs and classes get a
// separating blank line.
func (e *emitter) stmts(list []*pyast.Node, topLevel bool) {
	if len(list) == 0 {
		e.w.line("pass")
		return
	}
	for i, s := range list {
		if topLevel && i > 0 && (s.Kind == pyast.KindFunctionDef || s.Kind == pyast.KindClassDef) {
			e.w.blank()
		}
		e.stmt(s)
	}
}

func (e *emitter) comments(n *pyast.Node) {
	for _, line := range n.Comments {
		e.w.line("# " + line)
	}
}

func (e *emitter) stmt(n *pyast.Node) {
	if n == nil {
		return
	}
	e.comments(n)
	switch n.Kind {
	case pyast.KindCommentStmt:
		if len(n.Comments) == 0 {
			e.w.line("pass")
		}

	case pyast.KindFunctionDef:
		for _, d := range n.Decorators {
			e.w.line("@" + d)
		}
		e.w.line("def " + n.Name + "(" + e.params(n.Params) + "):")
		e.block(n.Body)

	case pyast.KindClassDef:
		head := "class " + n.Name
		if n.Base != nil {
			head += "(" + e.expr(n.Base, precLowest) + ")"
		}
		e.w.line(head + ":")
		e.block(n.Body)

	case pyast.KindAssign:
		e.w.line(e.expr(n.Target, precLowest) + " = " + e.expr(n.Value, precLowest))

	case pyast.KindAugAssign:
		e.w.line(e.expr(n.Target, precLowest) + " " + n.Op + "= " + e.expr(n.Value, precLowest))

	case pyast.KindExprStmt:
		e.w.line(e.expr(n.Value, precLowest))

	case pyast.KindIf:
		e.ifChain(n, "if")

	case pyast.KindForEach:
		e.w.line("for " + e.expr(n.Target, precLowest) + " in " + e.expr(n.Iter, precLowest) + ":")
		e.block(n.Body)

	case pyast.KindWhile:
		e.w.line("while " + e.expr(n.Test, precLowest) + ":")
		e.block(n.Body)

	case pyast.KindTry:
		e.w.line("try:")
		e.block(n.Body)
		for _, h := range n.Handlers {
			e.comments(h)
			head := "except"
			if h.ExcType != nil {
				head += " " + e.expr(h.ExcType, precLowest)
				if h.Name != "" {
					head += " as " + h.Name
				}
			}
			e.w.line(head + ":")
			e.block(h.Body)
		}
		if len(n.Final) > 0 {
			e.w.line("finally:")
			e.block(n.Final)
		}

	case pyast.KindRaise:
		if n.Value != nil {
			e.w.line("raise " + e.expr(n.Value, precLowest))
		} else {
			e.w.line("raise")
		}

	case pyast.KindReturn:
		if n.Value != nil {
			e.w.line("return " + e.expr(n.Value, precLowest))
		} else {
			e.w.line("return")
		}

	case pyast.KindBreak:
		e.w.line("break")

	case pyast.KindContinue:
		e.w.line("continue")

	case pyast.KindPass:
		e.w.line("pass")

	case pyast.KindImport:
		e.w.line("import " + e.aliases(n.Aliases))

	case pyast.KindImportFrom:
		e.w.line("from " + n.Name + " import " + e.aliases(n.Aliases))

	case pyast.KindGlobal:
		e.w.line("global " + e.aliases(n.Aliases))

	case pyast.KindNonlocal:
		e.w.line("nonlocal " + e.aliases(n.Aliases))

	default:
		// An expression in statement position; print it as one.
		e.w.line(e.expr(n, precLowest))
	}
}

// ifChain folds a nested else-if into elif lines.
func (e *emitter) ifChain(n *pyast.Node, keyword string) {
	e.w.line(keyword + " " + e.expr(n.Test, precLowest) + ":")
	e.block(n.Body)
	if len(n.Orelse) == 0 {
		return
	}
	if len(n.Orelse) == 1 && n.Orelse[0].Kind == pyast.KindIf && len(n.Orelse[0].Comments) == 0 {
		e.ifChain(n.Orelse[0], "elif")
		return
	}
	e.w.line("else:")
	e.block(n.Orelse)
}

func (e *emitter) block(body []*pyast.Node) {
	e.w.push()
	if len(body) == 0 {
		e.w.line("pass")
	} else {
		onlyComments := true
		for _, s := range body {
			e.stmt(s)
			if s != nil && s.Kind != pyast.KindCommentStmt {
				onlyComments = false
			}
		}
		if onlyComments {
			e.w.line("pass")
		}
	}
	e.w.pop()
}

func (e *emitter) params(params []pyast.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		s := p.Name
		if p.Star {
			s = "*" + s
		}
		if p.Default != nil {
			s += "=" + e.expr(p.Default, precLowest)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

func (e *emitter) aliases(aliases []pyast.Alias) string {
	parts := make([]string, 0, len(aliases))
	for _, a := range aliases {
		s := a.Name
		if a.AsName != "" {
			s += " as " + a.AsName
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// footer renders the conventional export record. ES-module exports win
// over CommonJS ones when a mixed-shape file produced both.
func (e *emitter) footer(rec *transform.ExportsRecord) {
	if rec.CommonJS && !rec.ESM {
		e.w.line("_exports = _module_exports")
	} else {
		var entries []string
		if rec.HasDefault {
			entries = append(entries, "'default': _default")
		}
		for _, n := range rec.Named {
			local := n.Local
			if local == "" {
				local = n.Exported
			}
			entries = append(entries, fmt.Sprintf("%s: %s", pyStr(n.Exported), local))
		}
		e.w.line("_exports = {" + strings.Join(entries, ", ") + "}")
	}
	var names []string
	for _, n := range rec.Named {
		names = append(names, pyStr(n.Exported))
	}
	e.w.line("__all__ = [" + strings.Join(names, ", ") + "]")
}
