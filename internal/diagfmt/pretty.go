package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"js2py/internal/diag"
	"js2py/internal/source"
)

// PrettyOptions controls the terminal rendering.
type PrettyOptions struct {
	Color   bool
	Excerpt bool // print the offending source line with a caret
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	dimColor  = color.New(color.Faint)
)

func severityTag(sev diag.Severity, colored bool) string {
	label := sev.String()
	if !colored {
		return label
	}
	switch sev {
	case diag.SevError:
		return errColor.Sprint(label)
	case diag.SevWarning:
		return warnColor.Sprint(label)
	default:
		return infoColor.Sprint(label)
	}
}

// WritePretty renders the bag one diagnostic per block:
//
//	ERROR JSR-PARSE src.js:3:7 syntax error: unexpected input
//	    var x = ;
//	          ^
func WritePretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOptions) {
	bag.Sort()
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		loc := fs.ResolveStart(d.Primary)
		fmt.Fprintf(w, "%s %s %s:%d:%d %s\n",
			severityTag(d.Severity, opts.Color), d.Code, f.Path, loc.Line, loc.Col, d.Message)

		if !opts.Excerpt {
			continue
		}
		line := f.GetLine(loc.Line)
		if line == "" {
			continue
		}
		fmt.Fprintf(w, "    %s\n", line)
		// The caret column accounts for wide runes before the position.
		prefix := line
		if int(loc.Col-1) <= len(line) {
			prefix = line[:loc.Col-1]
		}
		pad := runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", "    "))
		caret := strings.Repeat(" ", pad) + "^"
		if opts.Color {
			caret = dimColor.Sprint(caret)
		}
		fmt.Fprintf(w, "    %s\n", caret)
	}
}
