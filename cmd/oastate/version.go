package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.oastate.dev/oastate/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := version.Version
			if v == "" {
				v = "dev"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "oastate %s (%s)\n", v, version.Revision)
			fmt.Fprintf(cmd.OutOrStdout(), "  branch:     %s\n", version.Branch)
			fmt.Fprintf(cmd.OutOrStdout(), "  build user: %s\n", version.BuildUser)
			fmt.Fprintf(cmd.OutOrStdout(), "  build date: %s\n", version.BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  go version: %s\n", version.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "  platform:   %s/%s\n", version.GoOS, version.GoArch)

			return nil
		},
	}
}
