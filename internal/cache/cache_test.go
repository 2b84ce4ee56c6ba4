package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"js2py/internal/jsast"
	"js2py/internal/source"
)

func sampleTree() *jsast.Node {
	root := jsast.NewNode(jsast.KindProgram, source.Span{End: 10})
	decl := jsast.NewNode(jsast.KindVarDecl, source.Span{End: 10})
	decl.DeclKind = "var"
	d := jsast.NewNode(jsast.KindVarDeclarator, source.Span{Start: 4, End: 9})
	target := jsast.NewNode(jsast.KindIdent, source.Span{Start: 4, End: 5})
	target.Name = "x"
	lit := jsast.NewNode(jsast.KindNumberLit, source.Span{Start: 8, End: 9})
	lit.Raw = "1"
	lit.Num = 1
	d.Target = target
	d.Init = lit
	decl.Elements = []*jsast.Node{d}
	root.Body = []*jsast.Node{decl}
	jsast.Renumber(root)
	return root
}

func TestASTRoundTrip(t *testing.T) {
	c, err := OpenAST(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tree := sampleTree()
	if err := c.Put("abc123", "script", tree); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get("abc123")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Kind != jsast.KindProgram || len(got.Body) != 1 {
		t.Fatalf("tree shape lost: %+v", got)
	}
	decl := got.Body[0]
	if decl.DeclKind != "var" || decl.Elements[0].Target.Name != "x" {
		t.Errorf("payload lost: %+v", decl)
	}
	if got.ID != 1 || decl.ID != 2 {
		t.Errorf("ids not renumbered: root=%d decl=%d", got.ID, decl.ID)
	}
}

func TestASTMiss(t *testing.T) {
	c, _ := OpenAST(t.TempDir())
	_, ok, err := c.Get("nope")
	if ok || err != nil {
		t.Fatalf("miss should be silent: ok=%v err=%v", ok, err)
	}
}

func TestASTVersionMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, _ := OpenAST(dir)

	stale := map[string]any{
		"hash": "h", "mode": "script",
		"ast":  map[string]any{"kind": "Program"},
		"meta": map[string]any{"version": 0},
	}
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(filepath.Join(dir, "h.ast"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	_, ok, err := c.Get("h")
	if ok || err != nil {
		t.Fatalf("stale version must be a miss: ok=%v err=%v", ok, err)
	}
}

func TestASTCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, _ := OpenAST(dir)
	if err := os.WriteFile(filepath.Join(dir, "bad.ast"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, ok, err := c.Get("bad")
	if ok {
		t.Fatal("corrupt entry must not hit")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got %v", err)
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	c, err := OpenAnalysis(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	in := &AnalysisSummary{
		Hash:        "h1",
		Mode:        "module",
		ModuleShape: "esm",
		ScopeCount:  3,
		BindCount:   7,
		Diagnostics: []string{"INFO JSR-DO-WHILE t.js:1:1 lowered"},
	}
	if err := c.Put(in); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get("h1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.ModuleShape != "esm" || got.BindCount != 7 || len(got.Diagnostics) != 1 {
		t.Errorf("summary lost: %+v", got)
	}
}
