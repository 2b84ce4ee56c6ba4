// Package diagfmt renders diagnostics for humans and machines: a colored
// terminal form with source excerpts, and the JSON report file.
package diagfmt

import (
	"encoding/json"
	"io"

	"js2py/internal/diag"
	"js2py/internal/source"
)

// RecordJSON is one diagnostic in the report file.
type RecordJSON struct {
	File    string `json:"file"`
	Line    uint32 `json:"line"`
	Column  uint32 `json:"column"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func levelLabel(sev diag.Severity) string {
	switch sev {
	case diag.SevInfo:
		return "info"
	case diag.SevWarning:
		return "warn"
	default:
		return "error"
	}
}

// Records converts a sorted bag into report records.
func Records(bag *diag.Bag, fs *source.FileSet) []RecordJSON {
	bag.Sort()
	out := make([]RecordJSON, 0, bag.Len())
	for _, d := range bag.Items() {
		loc := fs.ResolveStart(d.Primary)
		out = append(out, RecordJSON{
			File:    fs.Get(d.Primary.File).Path,
			Line:    loc.Line,
			Column:  loc.Col,
			Level:   levelLabel(d.Severity),
			Code:    d.Code.String(),
			Message: d.Message,
		})
	}
	return out
}

// WriteJSON writes the report as an indented JSON array.
func WriteJSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Records(bag, fs))
}
