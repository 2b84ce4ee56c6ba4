// Package driver assembles the five pipeline stages into a run: parse,
// analyze, transform, emit, assemble. It owns the cache consultation, the
// stage timer, and the strict-mode promotion at stage boundaries.
package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"js2py/internal/analyzer"
	"js2py/internal/cache"
	"js2py/internal/diag"
	"js2py/internal/emit"
	"js2py/internal/jsast"
	"js2py/internal/observ"
	"js2py/internal/parser"
	"js2py/internal/source"
	"js2py/internal/transform"
)

// ErrStrict reports that strict mode promoted warnings to failure.
var ErrStrict = errors.New("driver: warnings promoted to errors in strict mode")

// Config is the fully resolved configuration the core receives; flag and
// manifest merging happened in the CLI layer.
type Config struct {
	InputPath      string
	Mode           parser.Mode
	Strict         bool
	RuntimeInclude bool
	CacheDir       string // root cache dir; "" uses DefaultCacheDir
	NoCache        bool
	MaxDiagnostics int

	// ParseCounter, when set, is incremented once per real parse (cache
	// misses only). Tests observe the cache contract through it.
	ParseCounter *int
}

// DefaultCacheDir is the conventional cache location.
const DefaultCacheDir = ".cache"

// Result carries everything a caller needs after a conversion.
type Result struct {
	Output   string
	Exports  *transform.ExportsRecord
	Bag      *diag.Bag
	FileSet  *source.FileSet
	Timer    *observ.Timer
	CacheHit bool
	Failed   bool // error-level diagnostics present (post promotion)
}

func (cfg *Config) maxDiagnostics() int {
	if cfg.MaxDiagnostics <= 0 {
		return 200
	}
	return cfg.MaxDiagnostics
}

func (cfg *Config) astCache() (*cache.ASTCache, error) {
	if cfg.NoCache {
		return nil, nil
	}
	dir := cfg.CacheDir
	if dir == "" {
		dir = DefaultCacheDir
	}
	return cache.OpenAST(filepath.Join(dir, "ast"))
}

// Convert runs the whole pipeline over one source text. The returned
// error covers I/O and strict aborts; diagnostic failures surface through
// Result.Failed so the caller can still inspect output and diagnostics.
func Convert(ctx context.Context, cfg Config, sourceText []byte) (*Result, error) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(cfg.InputPath, sourceText)

	bag := diag.NewBag(cfg.maxDiagnostics())
	reporter := diag.BagReporter{Bag: bag}
	timer := observ.NewTimer()
	res := &Result{Bag: bag, FileSet: fs, Timer: timer}

	// Stage 1: parse (or load the cached tree).
	root, hit, err := parseStage(ctx, cfg, fs, fileID, reporter, timer)
	if err != nil {
		return res, err
	}
	res.CacheHit = hit
	if root == nil || stageBoundary(cfg, bag, res) {
		return res, nil
	}

	// Stage 2: bind and analyze.
	phase := timer.Begin("analyze")
	analysis := analyzer.Analyze(root, reporter)
	timer.End(phase, analysis.Shape.String())
	if stageBoundary(cfg, bag, res) {
		return res, nil
	}

	// Stage 3: transform.
	phase = timer.Begin("transform")
	lowered := transform.Transform(root, analysis, reporter)
	timer.End(phase, "")
	res.Exports = lowered.Exports
	if stageBoundary(cfg, bag, res) {
		return res, nil
	}

	// Stage 4: emit.
	phase = timer.Begin("emit")
	body := emit.Emit(lowered.Module, emit.Options{
		Runtime: lowered.Runtime,
		Exports: lowered.Exports,
	})
	timer.End(phase, "")

	// Stage 5: assemble.
	phase = timer.Begin("assemble")
	res.Output = assemble(cfg, body, reporter, fs, fileID)
	timer.End(phase, "")

	bag.Sort()
	res.Failed = bag.HasErrors()
	return res, nil
}

// parseStage consults the AST cache before parsing; a clean fresh parse
// writes back through it. Parses that produced diagnostics are not cached:
// a cached tree must reproduce the exact diagnostic sequence of a fresh
// run, and parse-stage diagnostics live outside the tree.
func parseStage(ctx context.Context, cfg Config, fs *source.FileSet, fileID source.FileID, reporter diag.Reporter, timer *observ.Timer) (*jsast.Node, bool, error) {
	file := fs.Get(fileID)
	hash := file.CacheKey(string(cfg.Mode))

	astCache, err := cfg.astCache()
	if err != nil {
		return nil, false, err
	}

	phase := timer.Begin("parse")
	if astCache != nil {
		cached, ok, cacheErr := astCache.Get(hash)
		if cacheErr != nil && !errors.Is(cacheErr, cache.ErrCorrupt) {
			timer.End(phase, "")
			return nil, false, cacheErr
		}
		if ok {
			timer.End(phase, "cache hit")
			return cached, true, nil
		}
	}

	if cfg.ParseCounter != nil {
		*cfg.ParseCounter++
	}
	diagsBefore := bagLen(reporter)
	parsed, err := parser.Parse(ctx, fs, fileID, parser.Options{
		Mode:     cfg.Mode,
		Tolerant: !cfg.Strict,
	}, reporter)
	if err != nil {
		timer.End(phase, "")
		return nil, false, err
	}
	timer.End(phase, fmt.Sprintf("%d nodes", parsed.NodeCount))

	if astCache != nil && bagLen(reporter) == diagsBefore {
		if err := astCache.Put(hash, string(cfg.Mode), parsed.Root); err != nil {
			return nil, false, err
		}
	}
	return parsed.Root, false, nil
}

func bagLen(r diag.Reporter) int {
	if br, ok := r.(diag.BagReporter); ok && br.Bag != nil {
		return br.Bag.Len()
	}
	return 0
}

// stageBoundary applies strict-mode promotion between stages. The
// pipeline stops only in strict mode; a tolerant run carries error-level
// diagnostics through to completion and fails at the end.
func stageBoundary(cfg Config, bag *diag.Bag, res *Result) bool {
	if !cfg.Strict {
		return false
	}
	bag.PromoteWarnings()
	if bag.HasErrors() {
		bag.Sort()
		res.Failed = true
		return true
	}
	return false
}

// assemble prepends the generated header and resolves the runtime mode.
func assemble(cfg Config, body string, reporter diag.Reporter, fs *source.FileSet, fileID source.FileID) string {
	base := filepath.Base(fs.Get(fileID).Path)
	header := fmt.Sprintf("# Generated by js2py from %s. Do not edit.\n", base)

	if cfg.RuntimeInclude {
		// Bundling the runtime library is the runtime artifact's concern;
		// the emitted import suffices here.
		diag.ReportInfo(reporter, diag.CodeLowering,
			source.Span{File: fileID},
			"runtime bundling not performed; the emitted import preamble covers it")
	}
	return header + body
}
