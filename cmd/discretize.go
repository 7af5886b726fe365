package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/wormrl/config"
	"github.com/samuelfneumann/wormrl/environment/worm"
	"github.com/samuelfneumann/wormrl/utils/matutils/discretizer"
)

// NewDiscretizeCmd returns the command printing the grid coordinates
// of an observation
func NewDiscretizeCmd(root *cobra.Command, v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "discretize OBSERVATION...",
		Short: "Print the grid coordinates of an observation",
		Long: "Print the grid coordinates the agent assigns to an " +
			"observation of the worm environment's " +
			strconv.Itoa(worm.ObservationDims) + " host metrics. Separate " +
			"negative values from the flags with --.",
		Args: cobra.ExactArgs(worm.ObservationDims),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), agentFlags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			obs := mat.NewVecDense(len(args), nil)
			for i, arg := range args {
				value, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid observation %q: %w", arg, err)
				}
				obs.SetVec(i, value)
			}

			d, err := discretizer.New(worm.ObservationSpec(), cfg.Agent.Buckets)
			if err != nil {
				return err
			}
			coords, err := d.Discretize(obs)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), coords)
			return nil
		},
	}
	root.AddCommand(c)
	addBucketsFlag(c)
	return c
}

// register the subcommand into rootCmd
var _ = NewDiscretizeCmd(rootCmd, viper.GetViper())
