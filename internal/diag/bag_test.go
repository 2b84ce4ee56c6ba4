package diag

import (
	"testing"

	"js2py/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagSortOrder(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevInfo, CodeSparseArray, span(0, 20, 21), "later"))
	bag.Add(New(SevWarning, CodeWith, span(0, 5, 10), "with"))
	bag.Add(New(SevInfo, CodeDoWhile, span(0, 5, 10), "do-while"))
	bag.Sort()

	items := bag.Items()
	if items[0].Code != CodeWith {
		t.Errorf("expected warning first at equal span, got %s", items[0].Code)
	}
	if items[1].Code != CodeDoWhile {
		t.Errorf("expected JSR-DO-WHILE second, got %s", items[1].Code)
	}
	if items[2].Code != CodeSparseArray {
		t.Errorf("expected later span last, got %s", items[2].Code)
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(New(SevInfo, CodeDoWhile, span(0, 0, 1), "a")) {
		t.Fatal("first add must succeed")
	}
	if !bag.Add(New(SevInfo, CodeDoWhile, span(0, 1, 2), "b")) {
		t.Fatal("second add must succeed")
	}
	if bag.Add(New(SevInfo, CodeDoWhile, span(0, 2, 3), "c")) {
		t.Fatal("third add must be dropped")
	}
	if bag.Len() != 2 {
		t.Fatalf("len = %d, want 2", bag.Len())
	}
}

func TestPromoteWarnings(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevInfo, CodeDoWhile, span(0, 0, 1), "info stays"))
	bag.Add(New(SevWarning, CodeEval, span(0, 1, 2), "warn promotes"))
	bag.PromoteWarnings()

	if bag.Items()[0].Severity != SevInfo {
		t.Error("info must not be promoted")
	}
	if bag.Items()[1].Severity != SevError {
		t.Error("warning must become error")
	}
	if !bag.HasErrors() {
		t.Error("bag must report errors after promotion")
	}
}

func TestDedup(t *testing.T) {
	bag := NewBag(10)
	d := New(SevInfo, CodeDoWhile, span(0, 3, 9), "dup")
	bag.Add(d)
	bag.Add(d)
	bag.Add(New(SevInfo, CodeDoWhile, span(0, 4, 9), "different span"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("len after dedup = %d, want 2", bag.Len())
	}
}
