package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/wormrl/config"
	"github.com/samuelfneumann/wormrl/environment/action"
	"github.com/samuelfneumann/wormrl/environment/worm"
	"github.com/samuelfneumann/wormrl/experiment"
	"github.com/samuelfneumann/wormrl/utils/progressbar"
)

// progressWidth is the width of the training progress bar
const progressWidth = 40

// stopSignals stop training. The data of the finished episodes is
// still saved.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// NewTrainCmd returns the command training worm agents
func NewTrainCmd(root *cobra.Command, v *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "train",
		Args:  cobra.ExactArgs(0),
		Short: "Train worm agents",
		Long: "Train one or more independent tabular agents on the worm " +
			"environment, then optionally evaluate them greedily without " +
			"learning. Host metrics are simulated by sampling uniformly " +
			"within the observation bounds and actions are only logged. " +
			"SIGINT and SIGTERM stop training and save the data collected " +
			"so far.",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), agentFlags, envFlags,
				experimentFlags)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, v)

			ctx, stop := signal.NotifyContext(cmd.Context(), stopSignals...)
			defer stop()

			return train(ctx, cmd, cfg, logger)
		},
	}
	root.AddCommand(c)
	addAgentFlags(c)
	addEnvFlags(c)
	addExperimentFlags(c)
	return c
}

// train trains the agents described by cfg and saves their data
func train(ctx context.Context, cmd *cobra.Command, cfg config.Config,
	logger *logrus.Logger) error {
	spec := worm.ObservationSpec()
	executor := action.NewLogExecutor(logger)

	exps := make([]experiment.Experiment, cfg.Experiment.Agents)
	for i := range exps {
		sensor := worm.NewSimulatedSensor(spec, cfg.Seed+uint64(i))
		exp, err := cfg.CreateExperiment(i, sensor, executor, logger)
		if err != nil {
			return err
		}

		// A single bar cannot show concurrent agents
		if cfg.Experiment.Progress && cfg.Experiment.Agents == 1 {
			exp.SetProgressBar(progressbar.NewManualProgressBar(
				cmd.ErrOrStderr(), progressWidth,
				cfg.Experiment.Episodes+cfg.Experiment.EvalEpisodes))
		}
		exps[i] = exp
	}

	logger.WithFields(logrus.Fields{
		"agents":    cfg.Experiment.Agents,
		"episodes":  cfg.Experiment.Episodes,
		"algorithm": cfg.Agent.Algorithm,
		"buckets":   cfg.Agent.Buckets,
	}).Info("training started")

	pool := experiment.NewPool(cfg.Experiment.Concurrency, exps...)
	summaries, runErr := pool.Run(ctx)

	for i, s := range summaries {
		logger.WithFields(logrus.Fields{
			"agent":        i,
			"episodes":     len(s.Episodes),
			"mean_return":  s.MeanReturn,
			"return_stdev": s.StdDevReturn,
			"failures":     s.Failures,
		}).Info("training finished")
		fmt.Fprintf(cmd.OutOrStdout(), "agent %d: %d episodes, mean return "+
			"%.3f\n", i, len(s.Episodes), s.MeanReturn)

		if len(s.Evaluation) > 0 {
			logger.WithFields(logrus.Fields{
				"agent":       i,
				"episodes":    len(s.Evaluation),
				"mean_return": s.MeanEvalReturn,
			}).Info("evaluation finished")
			fmt.Fprintf(cmd.OutOrStdout(), "agent %d: %d evaluation "+
				"episodes, mean return %.3f\n", i, len(s.Evaluation),
				s.MeanEvalReturn)
		}
	}

	// Data of interrupted runs is still saved
	if err := pool.Save(); err != nil {
		logger.WithError(err).Error("could not save training data")
		if runErr == nil {
			return err
		}
	}
	return runErr
}

// register the subcommand into rootCmd
var _ = NewTrainCmd(rootCmd, viper.GetViper())
