package transform

import "testing"

func TestNeedsRename(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"value", false},
		{"class", true},  // reserved word
		{"lambda", true}, // reserved word
		{"print", true},  // shadow-sensitive builtin
		{"self", true},
		{"undefined", true}, // translator-owned
		{"js_plus", true},   // runtime namespace
		{"__proto", false},  // double underscore preserved as-is
		{"camelCase", false},
	}
	for _, c := range cases {
		if got := needsRename(c.name); got != c.want {
			t.Errorf("needsRename(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestModuleName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"fs", "fs"},
		{"node:path", "path"},
		{"./utils.js", "utils"},
		{"../lib/helpers.js", "lib_helpers"},
		{"left-pad", "left_pad"},
		{"some.config.mjs", "some_config"},
	}
	for _, c := range cases {
		if got := moduleName(c.in); got != c.want {
			t.Errorf("moduleName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
