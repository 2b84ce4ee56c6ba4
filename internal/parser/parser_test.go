package parser_test

import (
	"context"
	"testing"

	"js2py/internal/diag"
	"js2py/internal/jsast"
	"js2py/internal/parser"
	"js2py/internal/source"
)

func parseSource(t *testing.T, src string, mode parser.Mode, tolerant bool) (*parser.Result, *diag.Bag, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.js", []byte(src))
	bag := diag.NewBag(100)
	res, err := parser.Parse(context.Background(), fs, id, parser.Options{
		Mode:     mode,
		Tolerant: tolerant,
	}, diag.BagReporter{Bag: bag})
	return res, bag, err
}

func mustParse(t *testing.T, src string) *jsast.Node {
	t.Helper()
	res, bag, err := parseSource(t, src, parser.ModeScript, true)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if bag.HasErrors() {
		t.Fatalf("unexpected parse diagnostics: %v", bag.Items())
	}
	return res.Root
}

func findKind(root *jsast.Node, kind jsast.Kind) []*jsast.Node {
	var out []*jsast.Node
	jsast.Walk(root, func(n *jsast.Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func TestParseFunctionDeclaration(t *testing.T) {
	root := mustParse(t, "function add(a, b) { return a + b; }")
	fns := findKind(root, jsast.KindFunctionDecl)
	if len(fns) != 1 {
		t.Fatalf("expected 1 function, got %d", len(fns))
	}
	fn := fns[0]
	if fn.Name != "add" {
		t.Errorf("name = %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("params = %d", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("param names = %q, %q", fn.Params[0].Name, fn.Params[1].Name)
	}
	if fn.FnBody == nil || fn.FnBody.Kind != jsast.KindBlock {
		t.Fatal("missing body block")
	}
	rets := findKind(root, jsast.KindReturn)
	if len(rets) != 1 {
		t.Fatalf("expected 1 return, got %d", len(rets))
	}
	if rets[0].Argument == nil || rets[0].Argument.Kind != jsast.KindBinary {
		t.Error("return argument should be a binary expression")
	}
}

func TestParseClassWithMethods(t *testing.T) {
	root := mustParse(t, `
class Person {
  constructor(name) { this.name = name; }
  greet() { return this.name; }
  static create() { return null; }
}`)
	classes := findKind(root, jsast.KindClassDecl)
	if len(classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(classes))
	}
	cls := classes[0]
	if cls.Name != "Person" {
		t.Errorf("class name = %q", cls.Name)
	}
	if len(cls.Body) != 3 {
		t.Fatalf("expected 3 members, got %d", len(cls.Body))
	}
	if cls.Body[0].DeclKind != "constructor" {
		t.Errorf("first member kind = %q", cls.Body[0].DeclKind)
	}
	if cls.Body[1].DeclKind != "method" || cls.Body[1].Key.Name != "greet" {
		t.Errorf("second member = %q %q", cls.Body[1].DeclKind, cls.Body[1].Key.Name)
	}
	if !cls.Body[2].Static {
		t.Error("third member should be static")
	}
}

func TestParseVariableFlavors(t *testing.T) {
	root := mustParse(t, "var a = 1; let b = 2; const c = 3;")
	decls := findKind(root, jsast.KindVarDecl)
	if len(decls) != 3 {
		t.Fatalf("expected 3 declarations, got %d", len(decls))
	}
	kinds := []string{decls[0].DeclKind, decls[1].DeclKind, decls[2].DeclKind}
	want := []string{"var", "let", "const"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("decl %d kind = %q, want %q", i, kinds[i], want[i])
		}
	}
}

func TestParseTemplateLiteral(t *testing.T) {
	root := mustParse(t, "var s = `Hello ${name} and ${other}!`;")
	tpls := findKind(root, jsast.KindTemplateLit)
	if len(tpls) != 1 {
		t.Fatalf("expected 1 template, got %d", len(tpls))
	}
	tpl := tpls[0]
	if len(tpl.Elements) != 2 {
		t.Fatalf("expressions = %d", len(tpl.Elements))
	}
	if len(tpl.Quasis) != 3 {
		t.Fatalf("quasis = %d (%q)", len(tpl.Quasis), tpl.Quasis)
	}
	if tpl.Quasis[0] != "Hello " || tpl.Quasis[1] != " and " || tpl.Quasis[2] != "!" {
		t.Errorf("quasis = %q", tpl.Quasis)
	}
}

func TestParseForOfVsForIn(t *testing.T) {
	root := mustParse(t, "for (const x of xs) {} for (var k in obj) {}")
	if n := len(findKind(root, jsast.KindForOf)); n != 1 {
		t.Errorf("for-of count = %d", n)
	}
	if n := len(findKind(root, jsast.KindForIn)); n != 1 {
		t.Errorf("for-in count = %d", n)
	}
	forOf := findKind(root, jsast.KindForOf)[0]
	if forOf.DeclKind != "const" {
		t.Errorf("for-of decl kind = %q", forOf.DeclKind)
	}
}

func TestParseSparseArray(t *testing.T) {
	root := mustParse(t, "var a = [1, , 3];")
	arrays := findKind(root, jsast.KindArrayLit)
	if len(arrays) != 1 {
		t.Fatalf("expected 1 array, got %d", len(arrays))
	}
	elts := arrays[0].Elements
	if len(elts) != 3 {
		t.Fatalf("elements = %d", len(elts))
	}
	if elts[0] == nil || elts[1] != nil || elts[2] == nil {
		t.Errorf("hole should be the middle element: %v", elts)
	}
}

func TestParseImports(t *testing.T) {
	res, bag, err := parseSource(t, `
import def from "mod";
import { a, b as c } from "other";
import * as ns from "space";
import "effect";
`, parser.ModeModule, true)
	if err != nil || bag.HasErrors() {
		t.Fatalf("parse failed: %v %v", err, bag.Items())
	}
	imports := findKind(res.Root, jsast.KindImportDecl)
	if len(imports) != 4 {
		t.Fatalf("imports = %d", len(imports))
	}
	if imports[0].Elements[0].DeclKind != "default" || imports[0].Elements[0].Name != "def" {
		t.Errorf("default import = %+v", imports[0].Elements[0])
	}
	named := imports[1].Elements
	if len(named) != 2 || named[1].Str != "b" || named[1].Name != "c" {
		t.Errorf("named imports = %+v", named)
	}
	if imports[2].Elements[0].DeclKind != "namespace" || imports[2].Elements[0].Name != "ns" {
		t.Errorf("namespace import = %+v", imports[2].Elements[0])
	}
	if len(imports[3].Elements) != 0 || imports[3].Source != "effect" {
		t.Errorf("side-effect import = %+v", imports[3])
	}
}

func TestTolerantSyntaxError(t *testing.T) {
	_, bag, err := parseSource(t, "var x = ;", parser.ModeScript, true)
	if err != nil {
		t.Fatalf("tolerant parse must not fail hard: %v", err)
	}
	if !bag.HasErrors() {
		t.Fatal("expected a JSR-PARSE diagnostic")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.CodeParse {
			found = true
		}
	}
	if !found {
		t.Error("missing JSR-PARSE code")
	}
}

func TestStrictSyntaxErrorAborts(t *testing.T) {
	_, _, err := parseSource(t, "var x = ;", parser.ModeScript, false)
	if err == nil {
		t.Fatal("strict parse must abort on syntax error")
	}
}

func TestUnsupportedConstructsCarried(t *testing.T) {
	root := mustParse(t, "function* gen() { yield 1; }")
	if n := len(findKind(root, jsast.KindUnsupported)); n == 0 {
		t.Fatal("generator should bridge to an unsupported carrier node")
	}
}

func TestNodeIDsAreRenumbered(t *testing.T) {
	root := mustParse(t, "var a = 1;")
	seen := map[jsast.NodeID]bool{}
	jsast.Walk(root, func(n *jsast.Node) bool {
		if n.ID == jsast.NoNodeID {
			t.Fatalf("node %s has no ID", n.Kind)
		}
		if seen[n.ID] {
			t.Fatalf("duplicate node ID %d", n.ID)
		}
		seen[n.ID] = true
		return true
	})
	if root.ID != 1 {
		t.Errorf("root ID = %d, want 1", root.ID)
	}
}
