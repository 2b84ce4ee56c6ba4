package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"js2py/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the js2py version",
	Run: func(cmd *cobra.Command, args []string) {
		applyColorMode(cmd)
		fmt.Printf("js2py %s\n", version.Version)
		if version.GitCommit != "" {
			fmt.Printf("commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Printf("built:  %s\n", version.BuildDate)
		}
	},
}
