package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amartya2002/uptime-notifier/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d targets, %d sinks)\n", path, len(cfg.Targets), len(cfg.Sinks))
			return nil
		},
	}
}
