package analyzer

// jsBuiltins are the global names references may resolve to without a
// declaration. References outside this list become JSR-UNRESOLVED infos.
var jsBuiltins = map[string]bool{
	// Value properties.
	"undefined": true, "NaN": true, "Infinity": true, "globalThis": true,

	// Fundamental objects.
	"Object": true, "Function": true, "Boolean": true, "Symbol": true,

	// Errors.
	"Error": true, "TypeError": true, "RangeError": true, "SyntaxError": true,
	"ReferenceError": true, "EvalError": true, "URIError": true,

	// Numbers, text, collections.
	"Number": true, "Math": true, "Date": true, "String": true, "RegExp": true,
	"Array": true, "Map": true, "Set": true, "WeakMap": true, "WeakSet": true,
	"JSON": true, "Promise": true, "Proxy": true, "Reflect": true,

	// Functions.
	"parseInt": true, "parseFloat": true, "isNaN": true, "isFinite": true,
	"eval": true, "decodeURI": true, "decodeURIComponent": true,
	"encodeURI": true, "encodeURIComponent": true,

	// Host environment, browser and node alike.
	"console": true, "setTimeout": true, "clearTimeout": true,
	"setInterval": true, "clearInterval": true,
	"require": true, "module": true, "exports": true, "process": true,
	"arguments": true,
}

// IsBuiltin reports whether name is in the known-global list.
func IsBuiltin(name string) bool { return jsBuiltins[name] }
