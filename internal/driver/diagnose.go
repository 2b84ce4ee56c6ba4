package driver

import (
	"context"
	"path/filepath"
	"strings"

	"js2py/internal/analyzer"
	"js2py/internal/cache"
	"js2py/internal/diag"
	"js2py/internal/parser"
	"js2py/internal/source"
)

// DiagnoseResult is one file's frontend-only run: parse and analysis
// diagnostics without transformation.
type DiagnoseResult struct {
	Path    string
	Bag     *diag.Bag
	FileSet *source.FileSet
	Shape   analyzer.ModuleShape
	Lines   []string // golden-format diagnostic lines
	Cached  bool
	Failed  bool
}

func (cfg *Config) analysisCache() (*cache.AnalysisCache, error) {
	if cfg.NoCache {
		return nil, nil
	}
	dir := cfg.CacheDir
	if dir == "" {
		dir = DefaultCacheDir
	}
	return cache.OpenAnalysis(filepath.Join(dir, "analysis"))
}

// Diagnose runs the frontend over one file. Unchanged files replay the
// cached summary instead of re-running the analyzer.
func Diagnose(ctx context.Context, cfg Config, path string) (*DiagnoseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	hash := file.CacheKey(string(cfg.Mode))

	sidecar, err := cfg.analysisCache()
	if err != nil {
		return nil, err
	}
	if sidecar != nil {
		if summary, ok, _ := sidecar.Get(hash); ok {
			shape := shapeFromString(summary.ModuleShape)
			return &DiagnoseResult{
				Path:    path,
				Bag:     diag.NewBag(1),
				FileSet: fs,
				Shape:   shape,
				Lines:   summary.Diagnostics,
				Cached:  true,
				Failed:  summary.HasErrors,
			}, nil
		}
	}

	bag := diag.NewBag(cfg.maxDiagnostics())
	reporter := diag.BagReporter{Bag: bag}
	res := &DiagnoseResult{Path: path, Bag: bag, FileSet: fs}

	if cfg.ParseCounter != nil {
		*cfg.ParseCounter++
	}
	parsed, err := parser.Parse(ctx, fs, fileID, parser.Options{
		Mode:     cfg.Mode,
		Tolerant: !cfg.Strict,
	}, reporter)
	if err != nil {
		return nil, err
	}

	analysis := analyzer.Analyze(parsed.Root, reporter)
	res.Shape = analysis.Shape
	if cfg.Strict {
		bag.PromoteWarnings()
	}
	bag.Sort()
	res.Failed = bag.HasErrors()

	formatted := diag.FormatGolden(bag, fs)
	if formatted != "" {
		res.Lines = strings.Split(formatted, "\n")
	}

	if sidecar != nil {
		_ = sidecar.Put(&cache.AnalysisSummary{
			Hash:        hash,
			Mode:        string(cfg.Mode),
			ModuleShape: analysis.Shape.String(),
			ScopeCount:  uint32(analysis.ScopeCount()),
			BindCount:   uint32(analysis.BindingCount()),
			RiskCount:   uint32(len(analysis.Risks)),
			Diagnostics: res.Lines,
			HasErrors:   res.Failed,
		})
	}
	return res, nil
}

func shapeFromString(s string) analyzer.ModuleShape {
	switch s {
	case "esm":
		return analyzer.ShapeESM
	case "commonjs":
		return analyzer.ShapeCommonJS
	case "mixed":
		return analyzer.ShapeMixed
	}
	return analyzer.ShapeScript
}
