package analyzer_test

import (
	"context"
	"testing"

	"js2py/internal/analyzer"
	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/parser"
	"js2py/internal/source"
)

func analyze(t *testing.T, src string) (*analyzer.Result, *jsast.Node, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte(src))
	bag := diag.NewBag(100)
	parsed, err := parser.Parse(context.Background(), fs, id, parser.Options{
		Mode:     parser.ModeScript,
		Tolerant: true,
	}, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res := analyzer.Analyze(parsed.Root, diag.BagReporter{Bag: bag})
	return res, parsed.Root, bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestVarHoistsToFunctionScope(t *testing.T) {
	res, root, bag := analyze(t, `
function f() {
  if (true) { var x = 1; }
  return x;
}`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(res.Unresolved) != 0 {
		t.Fatalf("x should resolve through hoisting: %v", res.Unresolved)
	}
	// The binding must live in the function scope, not the if block.
	var fnScope analyzer.ScopeID
	jsast.Walk(root, func(n *jsast.Node) bool {
		if n.Kind == jsast.KindFunctionDecl {
			fnScope = res.ScopeOf[n.ID]
		}
		return true
	})
	found := false
	for _, id := range res.Scope(fnScope).Bindings() {
		b := res.Binding(id)
		if b.Name == "x" && b.Kind == analyzer.BindVar && b.Hoisted {
			found = true
		}
	}
	if !found {
		t.Error("x not hoisted into the function scope")
	}
}

func TestDuplicateLetIsError(t *testing.T) {
	_, _, bag := analyze(t, "let a = 1; let a = 2;")
	if !hasCode(bag, diag.CodeDupLet) {
		t.Fatal("expected JSR-DUP-LET")
	}
	if !bag.HasErrors() {
		t.Fatal("duplicate let must be an error")
	}
}

func TestVarShadowWarns(t *testing.T) {
	_, _, bag := analyze(t, `
let a = 1;
function f() {
  { var a = 2; }
}`)
	// The inner var hoists within f and does not clash with the outer let;
	// shadowing of a block-scoped name from a nested block does warn.
	_, _, bag2 := analyze(t, `
function f() {
  let a = 1;
  { var a = 2; }
}`)
	_ = bag
	if !hasCode(bag2, diag.CodeVarShadow) {
		t.Fatal("expected JSR-VAR-SHADOW")
	}
}

func TestUnresolvedGlobalIsInfo(t *testing.T) {
	res, _, bag := analyze(t, "mystery();")
	if !hasCode(bag, diag.CodeUnresolved) {
		t.Fatal("expected JSR-UNRESOLVED")
	}
	if bag.HasErrors() {
		t.Fatal("unresolved globals are informational")
	}
	if len(res.Unresolved) != 1 {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
}

func TestBuiltinsResolve(t *testing.T) {
	res, _, bag := analyze(t, "console.log(Math.max(1, 2));")
	if hasCode(bag, diag.CodeUnresolved) {
		t.Fatal("console and Math are known globals")
	}
	if len(res.Unresolved) != 0 {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
}

func TestThisClassification(t *testing.T) {
	res, root, _ := analyze(t, `
class A {
  constructor() { this.x = 1; }
  m() { return this.x; }
}
function Ctor() { this.y = 2; }
var a = new Ctor();
function plain() { return 1; }
var arrow = () => this;
`)
	kinds := map[string]analyzer.ThisKind{}
	jsast.Walk(root, func(n *jsast.Node) bool {
		switch n.Kind {
		case jsast.KindFunctionDecl:
			kinds[n.Name] = res.ThisOf[n.ID]
		case jsast.KindMethodDef:
			if n.Key != nil && n.Value != nil {
				kinds[n.Key.Name] = res.ThisOf[n.Value.ID]
			}
		case jsast.KindArrowFunction:
			kinds["arrow"] = res.ThisOf[n.ID]
		}
		return true
	})
	want := map[string]analyzer.ThisKind{
		"constructor": analyzer.ThisConstructor,
		"m":           analyzer.ThisMethod,
		"Ctor":        analyzer.ThisConstructor,
		"plain":       analyzer.ThisOrdinary,
		"arrow":       analyzer.ThisLexical,
	}
	for name, k := range want {
		if kinds[name] != k {
			t.Errorf("%s: this kind = %v, want %v", name, kinds[name], k)
		}
	}
}

func TestTopLevelThisWarns(t *testing.T) {
	_, _, bag := analyze(t, "var x = this;")
	if !hasCode(bag, diag.CodeThisTop) {
		t.Fatal("expected JSR-THIS-TOP")
	}
}

func TestRiskPatterns(t *testing.T) {
	_, _, bag := analyze(t, `
eval("code");
Foo.prototype.bar = function () {};
obj[key()] = 1;
delete obj[key()];
function f() { return arguments.length; }
`)
	for _, code := range []diag.Code{
		diag.CodeEval, diag.CodeProto, diag.CodeDynWrite,
		diag.CodeDelete, diag.CodeArguments,
	} {
		if !hasCode(bag, code) {
			t.Errorf("missing %s", code)
		}
	}
}

func TestModuleShapes(t *testing.T) {
	cases := []struct {
		src   string
		shape analyzer.ModuleShape
	}{
		{"var x = 1;", analyzer.ShapeScript},
		{"export var x = 1;", analyzer.ShapeESM},
		{"var fs = require('fs'); module.exports = fs;", analyzer.ShapeCommonJS},
		{"import x from 'y'; module.exports = 1;", analyzer.ShapeMixed},
	}
	for _, c := range cases {
		fs := source.NewFileSet()
		id := fs.AddVirtual("t.js", []byte(c.src))
		bag := diag.NewBag(100)
		parsed, err := parser.Parse(context.Background(), fs, id, parser.Options{
			Mode:     parser.ModeModule,
			Tolerant: true,
		}, diag.BagReporter{Bag: bag})
		if err != nil {
			t.Fatalf("parse %q: %v", c.src, err)
		}
		res := analyzer.Analyze(parsed.Root, diag.BagReporter{Bag: bag})
		if res.Shape != c.shape {
			t.Errorf("%q: shape = %v, want %v", c.src, res.Shape, c.shape)
		}
		if c.shape == analyzer.ShapeMixed && !hasCode(bag, diag.CodeMixedModules) {
			t.Error("mixed shape must warn")
		}
	}
}

func TestWithStatementFlagged(t *testing.T) {
	_, _, bag := analyze(t, "with (obj) { x = 1; }")
	if !hasCode(bag, diag.CodeWith) {
		t.Fatal("expected JSR-WITH")
	}
}

func TestCatchScopeBindsParameter(t *testing.T) {
	res, _, bag := analyze(t, `
try { risky(); } catch (e) { console.log(e); }
`)
	if len(res.Unresolved) != 1 { // only `risky`
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
	_ = bag
}

func TestResolutionTotality(t *testing.T) {
	// Every non-global identifier use resolves to exactly one binding.
	res, root, bag := analyze(t, `
var total = 0;
function sum(xs) {
  let acc = 0;
  for (const x of xs) { acc = acc + x; }
  return acc;
}
total = sum([1, 2, 3]);
`)
	if bag.HasErrors() {
		t.Fatalf("errors: %v", bag.Items())
	}
	if len(res.Unresolved) != 0 {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
	// Spot-check capture marking: nothing here captures across functions.
	jsast.Walk(root, func(n *jsast.Node) bool {
		if id, ok := res.BindingOf[n.ID]; ok && res.Binding(id).Captured {
			t.Errorf("%s should not be marked captured", res.Binding(id).Name)
		}
		return true
	})
}

func TestCapturedBinding(t *testing.T) {
	res, root, _ := analyze(t, `
function outer() {
  var n = 0;
  return function () { return n; };
}`)
	var captured bool
	jsast.Walk(root, func(n *jsast.Node) bool {
		if id, ok := res.BindingOf[n.ID]; ok {
			b := res.Binding(id)
			if b.Name == "n" && b.Captured {
				captured = true
			}
		}
		return true
	})
	if !captured {
		t.Error("n should be marked captured")
	}
}

func TestAssignmentCount(t *testing.T) {
	res, root, _ := analyze(t, "var i = 0; i = 1; i = 2;")
	var assignments int
	jsast.Walk(root, func(n *jsast.Node) bool {
		if id, ok := res.BindingOf[n.ID]; ok {
			b := res.Binding(id)
			if b.Name == "i" {
				assignments = b.Assignments
			}
		}
		return true
	})
	if assignments != 2 {
		t.Errorf("assignments = %d, want 2", assignments)
	}
}
