package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "uptime-notifier",
	Short: "Probe HTTP endpoints and notify on settled status changes",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "uptime.yaml", "Path to the YAML config file")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("uptime-notifier version %s\n", version))

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())
}
