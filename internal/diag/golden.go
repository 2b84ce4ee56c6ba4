package diag

import (
	"fmt"
	"strings"

	"js2py/internal/source"
)

// FormatGolden renders a bag into a stable one-line-per-entry form used by
// golden tests and the CLI short output:
//
//	SEVERITY CODE path:line:col message
//
// The bag is sorted first, so the output order matches the report order.
func FormatGolden(bag *Bag, fs *source.FileSet) string {
	if bag == nil || bag.Len() == 0 {
		return ""
	}
	bag.Sort()

	var b strings.Builder
	for i, d := range bag.Items() {
		loc := fs.ResolveStart(d.Primary)
		path := fs.Get(d.Primary.File).Path
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, path, loc.Line, loc.Col, d.Message)
		if i < bag.Len()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
