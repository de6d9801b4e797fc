package main

import (
	"fmt"

	"github.com/Harshitk-cp/oracle/internal/buildconfig"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildconfig.VersionInfo()
		if outputJSON {
			return outputAsJSON(cmd, info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "oracle %s\n", info["version"])
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", info["commit"])
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", info["build_date"])
		fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", info["go"])
		return nil
	},
}
