package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"js2py/internal/driver"
	"js2py/internal/parser"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <input>",
	Short: "Parse and analyze without converting",
	Long:  "Run the frontend (parse and scope analysis) over a file or directory and print diagnostics.",
	Args:  cobra.ExactArgs(1),
	RunE:  diagnoseExecution,
}

func init() {
	diagnoseCmd.Flags().Bool("module", false, "parse inputs as ES modules")
	diagnoseCmd.Flags().Bool("strict", false, "treat warnings as errors")
	diagnoseCmd.Flags().String("cache-dir", "", "cache directory")
	diagnoseCmd.Flags().Bool("no-cache", false, "disable the analysis cache")
}

func diagnoseExecution(cmd *cobra.Command, args []string) error {
	applyColorMode(cmd)

	cfg := driver.Config{Mode: parser.ModeScript}
	if v, _ := cmd.Flags().GetBool("module"); v {
		cfg.Mode = parser.ModeModule
	}
	cfg.Strict, _ = cmd.Flags().GetBool("strict")
	cfg.CacheDir, _ = cmd.Flags().GetString("cache-dir")
	cfg.NoCache, _ = cmd.Flags().GetBool("no-cache")
	cfg.MaxDiagnostics, _ = cmd.Flags().GetInt("max-diagnostics")

	info, err := os.Stat(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitIOFailure)
	}

	var results []*driver.DiagnoseResult
	if info.IsDir() {
		results, err = driver.DiagnoseDir(cmd.Context(), cfg, args[0])
	} else {
		var one *driver.DiagnoseResult
		one, err = driver.Diagnose(cmd.Context(), cfg, args[0])
		if one != nil {
			results = append(results, one)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitIOFailure)
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	failed := false
	for _, r := range results {
		if r.Failed {
			failed = true
		}
		if quiet {
			continue
		}
		for _, line := range r.Lines {
			fmt.Fprintln(os.Stdout, line)
		}
	}

	if failed {
		os.Exit(exitDiagnostics)
	}
	return nil
}
