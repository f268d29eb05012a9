package main

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time using -ldflags.
	Version = "0.0.0-dev"
)

var rootCmd = &cobra.Command{
	Use:           "sqlprompt",
	Short:         "Turn natural-language prompts into SQL against your database",
	Long:          `sqlprompt sends a prompt and connection details to a sqlprompt server, which generates SQL with a language model, runs it and returns the rows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("sqlprompt %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(askCmd, hashPasswordCmd, versionCmd)
}
