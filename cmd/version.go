package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with
// -ldflags "-X github.com/samuelfneumann/wormrl/cmd.Version=..."
var Version = "v0.0.0-dev"

func NewVersionCmd(root *cobra.Command, _ *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "version",
		Args:  cobra.ExactArgs(0),
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			if long, _ := cmd.Flags().GetBool("long"); long {
				fmt.Fprintf(cmd.OutOrStdout(), "Version: %s  GoVersion: %s\n",
					Version, runtime.Version())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
	root.AddCommand(c)
	c.Flags().Bool("long", false, "Show long version info")
	return c
}

// register the subcommand into rootCmd
var _ = NewVersionCmd(rootCmd, viper.GetViper())
