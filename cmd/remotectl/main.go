package main

import (
	"remote-tools/pkg/lib"
)

func main() {
	rootCmd.AddCommand(validateCmd, listCmd, showCmd, pickCmd, formCmd, shellCmd, browseCmd, exampleCmd)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		lib.Exit(err)
	}
}
