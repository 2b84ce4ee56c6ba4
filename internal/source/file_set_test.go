package source

import (
	"testing"
)

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("bom.js", []byte("\xEF\xBB\xBFvar a = 1;\r\nvar b = 2;\r\n"))
	f := fs.Get(id)
	want := "var a = 1;\nvar b = 2;\n"
	if string(f.Content) != want {
		t.Fatalf("normalized content = %q, want %q", f.Content, want)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.js", []byte("ab\ncd\nef"))
	cases := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline itself
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 3, 2},
	}
	for _, c := range cases {
		got := fs.ResolveStart(Span{File: id, Start: c.off, End: c.off})
		if got.Line != c.line || got.Col != c.col {
			t.Errorf("offset %d: got %d:%d, want %d:%d", c.off, got.Line, got.Col, c.line, c.col)
		}
	}
}

func TestCacheKeyDependsOnContentAndMode(t *testing.T) {
	fs := NewFileSet()
	a := fs.Get(fs.AddVirtual("a.js", []byte("var x = 1;")))
	b := fs.Get(fs.AddVirtual("b.js", []byte("var x = 1;")))
	c := fs.Get(fs.AddVirtual("c.js", []byte("var x = 1; ")))

	if a.CacheKey("script") != b.CacheKey("script") {
		t.Error("identical content must produce identical keys")
	}
	if a.CacheKey("script") == a.CacheKey("module") {
		t.Error("mode must participate in the key")
	}
	if a.CacheKey("script") == c.CacheKey("script") {
		t.Error("trailing whitespace must change the key")
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("t.js", []byte("one\ntwo\nthree")))
	if got := f.GetLine(2); got != "two" {
		t.Errorf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "three" {
		t.Errorf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Errorf("GetLine(9) = %q", got)
	}
}
