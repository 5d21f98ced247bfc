package main

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current and supported API versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := appFrom(cmd)

		current, err := a.svc.APIVersion(cmd.Context())
		if err != nil {
			return err
		}
		supported, err := a.svc.APISupportedVersions(cmd.Context())
		if err != nil {
			return err
		}
		return a.print(cmd.OutOrStdout(), append(current, supported...))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
