package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// analysisSchemaVersion is bumped whenever AnalysisSummary changes shape.
const analysisSchemaVersion uint16 = 1

// AnalysisSummary is the compact, span-free digest of a frontend run that
// `diagnose` reuses on unchanged files: counts plus the formatted
// diagnostic lines, enough to reprint a report without re-analyzing.
type AnalysisSummary struct {
	Schema      uint16
	Hash        string
	Mode        string
	ModuleShape string
	ScopeCount  uint32
	BindCount   uint32
	RiskCount   uint32
	Diagnostics []string // golden-format lines, already sorted
	HasErrors   bool
}

// AnalysisCache stores summaries under <dir>/<hex-sha256>.mp as msgpack.
type AnalysisCache struct {
	dir string
}

// OpenAnalysis initializes the analysis sidecar cache under dir
// (conventionally ".cache/analysis").
func OpenAnalysis(dir string) (*AnalysisCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &AnalysisCache{dir: dir}, nil
}

func (c *AnalysisCache) pathFor(hash string) string {
	return filepath.Join(c.dir, hash+".mp")
}

// Get loads the summary for hash; false on miss or version mismatch.
func (c *AnalysisCache) Get(hash string) (*AnalysisSummary, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	f, err := os.Open(c.pathFor(hash))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: %w", err)
	}
	defer f.Close()

	var out AnalysisSummary
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.pathFor(hash), err)
	}
	if out.Schema != analysisSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// Put writes the summary atomically.
func (c *AnalysisCache) Put(summary *AnalysisSummary) error {
	if c == nil || summary == nil {
		return nil
	}
	summary.Schema = analysisSchemaVersion
	data, err := msgpack.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	return atomicWrite(c.pathFor(summary.Hash), data)
}
