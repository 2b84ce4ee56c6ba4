package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"js2py/internal/diag"
	"js2py/internal/source"
)

func TestWriteJSONSortedRecords(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("var x = 1;\nvar y = 2;\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevInfo, diag.CodeSparseArray, source.Span{File: id, Start: 11, End: 12}, "later"))
	bag.Add(diag.New(diag.SevWarning, diag.CodeEval, source.Span{File: id, Start: 0, End: 3}, "earlier"))

	var buf bytes.Buffer
	if err := WriteJSON(&buf, bag, fs); err != nil {
		t.Fatal(err)
	}

	var records []RecordJSON
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].Code != "JSR-EVAL" || records[0].Line != 1 || records[0].Column != 1 {
		t.Errorf("first record = %+v", records[0])
	}
	if records[0].Level != "warn" || records[1].Level != "info" {
		t.Errorf("levels = %q, %q", records[0].Level, records[1].Level)
	}
	if records[1].Line != 2 {
		t.Errorf("second record line = %d", records[1].Line)
	}
}
