package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/wormrl/config"
)

// NewRootCmd returns the root command. Flags of the command and its
// subcommands are bound to v.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wormrl",
		Short:         "Train a worm to choose its actions with tabular Q-learning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	cmd.PersistentFlags().String(config.FileKey, "", "Set config file (YAML)")
	_ = v.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag(config.FileKey, cmd.PersistentFlags().Lookup(config.FileKey))
	return cmd
}

// newLogger returns the logger of a command
func newLogger(cmd *cobra.Command, v *viper.Viper) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	if v.GetBool("debug") {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCmd(viper.GetViper())

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
