package emit

import (
	"strings"
	"testing"

	"js2py/internal/pyast"
	"js2py/internal/transform"
)

func render(stmts ...*pyast.Node) string {
	module := &pyast.Node{Kind: pyast.KindModule, Body: stmts}
	return Emit(module, Options{})
}

func TestEmitFunctionDef(t *testing.T) {
	def := &pyast.Node{
		Kind: pyast.KindFunctionDef,
		Name: "add",
		Params: []pyast.Param{
			{Name: "a"},
			{Name: "b", Default: pyast.NewNum("1")},
			{Name: "rest", Star: true},
		},
		Body: []*pyast.Node{{
			Kind:  pyast.KindReturn,
			Value: &pyast.Node{Kind: pyast.KindBinOp, Op: "+", Left: pyast.NewName("a"), Right: pyast.NewName("b")},
		}},
	}
	got := render(def)
	want := "def add(a, b=1, *rest):\n    return a + b\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitIfElifElse(t *testing.T) {
	stmt := &pyast.Node{
		Kind: pyast.KindIf,
		Test: pyast.NewName("a"),
		Body: []*pyast.Node{pyast.NewExprStmt(pyast.NewCall(pyast.NewName("f")))},
		Orelse: []*pyast.Node{{
			Kind:   pyast.KindIf,
			Test:   pyast.NewName("b"),
			Body:   []*pyast.Node{pyast.NewPass()},
			Orelse: []*pyast.Node{pyast.NewExprStmt(pyast.NewCall(pyast.NewName("g")))},
		}},
	}
	got := render(stmt)
	want := "if a:\n    f()\nelif b:\n    pass\nelse:\n    g()\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitTryExceptFinally(t *testing.T) {
	stmt := &pyast.Node{
		Kind: pyast.KindTry,
		Body: []*pyast.Node{pyast.NewExprStmt(pyast.NewCall(pyast.NewName("work")))},
		Handlers: []*pyast.Node{{
			Kind:    pyast.KindExceptClause,
			ExcType: pyast.NewName("JsError"),
			Name:    "e",
			Body:    []*pyast.Node{pyast.NewPass()},
		}},
		Final: []*pyast.Node{pyast.NewExprStmt(pyast.NewCall(pyast.NewName("done")))},
	}
	got := render(stmt)
	want := "try:\n    work()\nexcept JsError as e:\n    pass\nfinally:\n    done()\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitPrecedence(t *testing.T) {
	// (a + b) * c keeps its parentheses; a + b * c does not gain any.
	mul := &pyast.Node{
		Kind: pyast.KindBinOp, Op: "*",
		Left: &pyast.Node{Kind: pyast.KindBinOp, Op: "+",
			Left: pyast.NewName("a"), Right: pyast.NewName("b")},
		Right: pyast.NewName("c"),
	}
	if got := render(pyast.NewExprStmt(mul)); got != "(a + b) * c\n" {
		t.Errorf("got %q", got)
	}

	add := &pyast.Node{
		Kind: pyast.KindBinOp, Op: "+",
		Left: pyast.NewName("a"),
		Right: &pyast.Node{Kind: pyast.KindBinOp, Op: "*",
			Left: pyast.NewName("b"), Right: pyast.NewName("c")},
	}
	if got := render(pyast.NewExprStmt(add)); got != "a + b * c\n" {
		t.Errorf("got %q", got)
	}
}

func TestEmitStringEscapes(t *testing.T) {
	got := render(pyast.NewExprStmt(pyast.NewStr("it's\na \\ test")))
	want := "'it\\'s\\na \\\\ test'\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitComments(t *testing.T) {
	stmt := pyast.NewExprStmt(pyast.NewName("x")).WithComment("TODO: check")
	got := render(stmt)
	want := "# TODO: check\nx\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitDeterminism(t *testing.T) {
	def := &pyast.Node{
		Kind: pyast.KindClassDef,
		Name: "A",
		Body: []*pyast.Node{pyast.NewPass()},
	}
	a := render(def)
	b := render(def)
	if a != b {
		t.Error("emitter output must be byte-identical across runs")
	}
}

func TestPreambleAndFooter(t *testing.T) {
	rt := transformRuntimeWith(t, "js_plus", "undefined")
	exports := &transform.ExportsRecord{HasDefault: true}
	module := &pyast.Node{Kind: pyast.KindModule, Body: []*pyast.Node{
		pyast.NewAssign(pyast.NewName("_default"), pyast.NewNum("1")),
	}}
	out := Emit(module, Options{Runtime: rt, Exports: exports})
	if !strings.Contains(out, "from js2py_runtime import js_plus, undefined") {
		t.Errorf("missing preamble: %q", out)
	}
	if !strings.Contains(out, "_exports = {'default': _default}") {
		t.Errorf("missing footer: %q", out)
	}
}

// transformRuntimeWith builds a RuntimeSet with the given helpers marked.
func transformRuntimeWith(t *testing.T, names ...string) *transform.RuntimeSet {
	t.Helper()
	rt := transform.NewRuntimeSet()
	for _, n := range names {
		rt.Use(n)
	}
	return rt
}
