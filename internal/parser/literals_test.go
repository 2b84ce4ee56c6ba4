package parser

import "testing"

func TestUnescapeJS(t *testing.T) {
	cases := []struct{ in, want string }{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`tab\there`, "tab\there"},
		{`quote\'s`, "quote's"},
		{`A`, "A"},
		{`\u{1F600}`, "\U0001F600"},
		{`\x41`, "A"},
		{`back\\slash`, `back\slash`},
	}
	for _, c := range cases {
		if got := unescapeJS(c.in); got != c.want {
			t.Errorf("unescapeJS(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseJSNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"42", 42},
		{"3.14", 3.14},
		{"1e3", 1000},
		{"0x10", 16},
		{"0o17", 15},
		{"0b101", 5},
		{"017", 15}, // legacy octal
		{"1_000", 1000},
	}
	for _, c := range cases {
		if got := parseJSNumber(c.in); got != c.want {
			t.Errorf("parseJSNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
