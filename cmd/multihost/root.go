package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "multihost",
	Short: "Host multiple isolated sub-applications in one process",
	Long: `multihost - Run several independently-configured sub-applications
(hosts) in a single process. Each host gets its own isolated service scope
bridged from a shared root scope and is mounted at its own path prefix on
one shared router.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env-file", nil, ".env files to load (repeatable)")
	rootCmd.PersistentFlags().String("settings", "", "TOML settings file with a [hosting] section")
}
