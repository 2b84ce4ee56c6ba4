// Package main implements the js2py CLI.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"js2py/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "js2py",
	Short: "JavaScript to Python source-to-source translator",
	Long:  "js2py converts a single ES5/ES6-subset JavaScript file into semantically equivalent Python.",
}

// main registers subcommands and persistent flags, then executes the root
// command. Exit codes: 0 clean, 1 parse/IO failure, 2 diagnostic errors.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-stage timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 200, "maximum number of diagnostics to keep")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// colorEnabled resolves the --color tri-state against the terminal.
func colorEnabled(cmd *cobra.Command) bool {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == ""
}

func applyColorMode(cmd *cobra.Command) {
	color.NoColor = !colorEnabled(cmd)
}
