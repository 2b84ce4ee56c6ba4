package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"js2py/internal/diagfmt"
	"js2py/internal/driver"
	"js2py/internal/parser"
	"js2py/internal/project"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert a JavaScript file to Python",
	Args:  cobra.ExactArgs(1),
	RunE:  convertExecution,
}

func init() {
	convertCmd.Flags().String("out", "", "output file path (defaults to the input with a .py extension)")
	convertCmd.Flags().Bool("module", false, "parse the input as an ES module")
	convertCmd.Flags().String("runtime", "skip", "runtime handling (include|skip)")
	convertCmd.Flags().Bool("strict", false, "treat warnings as errors and abort on the first syntax error")
	convertCmd.Flags().String("report", "", "write the diagnostic report as JSON to this path")
	convertCmd.Flags().String("cache-dir", "", "cache directory (defaults to .cache in the working directory)")
	convertCmd.Flags().Bool("no-cache", false, "disable the parse cache")
}

// exit codes per the tool's contract.
const (
	exitOK          = 0
	exitIOFailure   = 1
	exitDiagnostics = 2
)

func convertExecution(cmd *cobra.Command, args []string) error {
	applyColorMode(cmd)
	cfg, inputPath, err := resolveConvertConfig(cmd, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitIOFailure)
	}

	sourceText, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitIOFailure)
	}

	res, err := driver.Convert(cmd.Context(), cfg, sourceText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if res != nil {
			printDiagnostics(cmd, res)
		}
		os.Exit(exitIOFailure)
	}

	if res.Output != "" {
		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".py"
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(exitIOFailure)
		}
		if err := os.WriteFile(outPath, []byte(res.Output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(exitIOFailure)
		}
	}

	printDiagnostics(cmd, res)

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(exitIOFailure)
		}
		writeErr := diagfmt.WriteJSON(f, res.Bag, res.FileSet)
		if closeErr := f.Close(); writeErr == nil {
			writeErr = closeErr
		}
		if writeErr != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", writeErr)
			os.Exit(exitIOFailure)
		}
	}

	if timings, _ := cmd.Flags().GetBool("timings"); timings {
		fmt.Fprint(os.Stderr, res.Timer.Summary())
	}

	if res.Failed {
		os.Exit(exitDiagnostics)
	}
	return nil
}

// resolveConvertConfig merges flags over the optional project manifest.
func resolveConvertConfig(cmd *cobra.Command, input string) (driver.Config, string, error) {
	inputPath, err := filepath.Abs(input)
	if err != nil {
		return driver.Config{}, "", err
	}

	cfg := driver.Config{InputPath: inputPath, Mode: parser.ModeScript}

	manifest, found, err := project.Find(filepath.Dir(inputPath))
	if err != nil {
		return driver.Config{}, "", err
	}
	if found {
		if manifest.Config.Convert.Module {
			cfg.Mode = parser.ModeModule
		}
		cfg.Strict = manifest.Config.Convert.Strict
		cfg.RuntimeInclude = manifest.Config.Convert.Runtime == "include"
		if manifest.Config.Convert.CacheDir != "" {
			cfg.CacheDir = filepath.Join(manifest.Root, manifest.Config.Convert.CacheDir)
		}
	}

	if v, _ := cmd.Flags().GetBool("module"); v {
		cfg.Mode = parser.ModeModule
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict, _ = cmd.Flags().GetBool("strict")
	}
	if cmd.Flags().Changed("runtime") {
		mode, _ := cmd.Flags().GetString("runtime")
		switch mode {
		case "include", "skip":
			cfg.RuntimeInclude = mode == "include"
		default:
			return driver.Config{}, "", fmt.Errorf("--runtime must be include or skip, got %q", mode)
		}
	}
	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.CacheDir = dir
	}
	cfg.NoCache, _ = cmd.Flags().GetBool("no-cache")
	cfg.MaxDiagnostics, _ = cmd.Flags().GetInt("max-diagnostics")
	return cfg, inputPath, nil
}

func printDiagnostics(cmd *cobra.Command, res *driver.Result) {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return
	}
	if res.Bag.Len() == 0 {
		return
	}
	diagfmt.WritePretty(os.Stderr, res.Bag, res.FileSet, diagfmt.PrettyOptions{
		Color:   colorEnabled(cmd),
		Excerpt: true,
	})
}
