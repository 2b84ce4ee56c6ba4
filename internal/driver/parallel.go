package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// listJSFiles returns the sorted list of JavaScript files under dir.
func listJSFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if name == "node_modules" || strings.HasPrefix(name, ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".js", ".mjs", ".cjs":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// DiagnoseDir runs the frontend over every JavaScript file under dir with
// one worker per core. Each file owns its FileSet and Bag, so workers
// share nothing; results come back in path order regardless of completion
// order. Convert itself stays single-threaded; only this read-only sweep
// fans out.
func DiagnoseDir(ctx context.Context, cfg Config, dir string) ([]*DiagnoseResult, error) {
	files, err := listJSFiles(dir)
	if err != nil {
		return nil, err
	}

	results := make([]*DiagnoseResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range files {
		g.Go(func() error {
			res, err := Diagnose(gctx, cfg, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
