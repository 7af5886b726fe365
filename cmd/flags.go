package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/wormrl/config"
)

// agentFlags maps the agent flags to their configuration keys
var agentFlags = map[string]string{
	"buckets":           "agent.buckets",
	"learning-rate":     "agent.learning_rate",
	"min-learning-rate": "agent.min_learning_rate",
	"discount":          "agent.discount",
	"epsilon":           "agent.epsilon",
	"min-epsilon":       "agent.min_epsilon",
	"decay":             "agent.decay",
	"algorithm":         "agent.algorithm",
}

// envFlags maps the environment flags to their configuration keys
var envFlags = map[string]string{
	"step-delay":       "env.step_delay",
	"max-steps":        "env.max_steps",
	"cooldown-window":  "env.cooldown_window",
	"hunger-threshold": "env.hunger_threshold",
}

// experimentFlags maps the experiment flags to their configuration keys
var experimentFlags = map[string]string{
	"episodes":          "experiment.episodes",
	"eval-episodes":     "experiment.eval_episodes",
	"max-episode-steps": "experiment.max_episode_steps",
	"agents":            "experiment.agents",
	"concurrency":       "experiment.concurrency",
	"returns-file":      "experiment.returns_file",
	"lengths-file":      "experiment.lengths_file",
	"progress":          "experiment.progress",
	"seed":              "seed",
}

// addBucketsFlag adds the flag setting the discretization of
// observations
func addBucketsFlag(cmd *cobra.Command) {
	cmd.Flags().IntSlice("buckets", config.Default().Agent.Buckets,
		"Number of buckets along each observation dimension")
}

// addAgentFlags adds flags configuring the agent
func addAgentFlags(cmd *cobra.Command) {
	d := config.Default().Agent
	addBucketsFlag(cmd)
	cmd.Flags().Float64("learning-rate", d.LearningRate, "Initial learning rate")
	cmd.Flags().Float64("min-learning-rate", d.MinLearningRate, "Floor of the decayed learning rate")
	cmd.Flags().Float64("discount", d.Discount, "Discount factor")
	cmd.Flags().Float64("epsilon", d.Epsilon, "Initial exploration probability")
	cmd.Flags().Float64("min-epsilon", d.MinEpsilon, "Floor of the decayed exploration probability")
	cmd.Flags().Float64("decay", d.Decay, "Decay rate of epsilon and the learning rate, 0 disables decay")
	cmd.Flags().String("algorithm", string(d.Algorithm), "Learning algorithm, q-learning or sarsa")
}

// addEnvFlags adds flags configuring the worm environment
func addEnvFlags(cmd *cobra.Command) {
	d := config.Default().Env
	cmd.Flags().Duration("step-delay", d.StepDelay, "Time waited after each action before observing")
	cmd.Flags().Int("max-steps", d.MaxSteps, "Maximum number of steps in an episode, 0 for no limit")
	cmd.Flags().Duration("cooldown-window", d.CooldownWindow, "Window of the action cooldown penalty")
	cmd.Flags().Duration("hunger-threshold", d.HungerThreshold, "Reward actions unused for longer than this, 0 disables")
}

// addExperimentFlags adds flags configuring the training run
func addExperimentFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().Int("episodes", d.Experiment.Episodes, "Number of episodes to train for")
	cmd.Flags().Int("eval-episodes", d.Experiment.EvalEpisodes, "Number of greedy episodes without learning run after training")
	cmd.Flags().Int("max-episode-steps", d.Experiment.MaxEpisodeSteps, "Cut off episodes after this many steps, 0 for no limit")
	cmd.Flags().Int("agents", d.Experiment.Agents, "Number of independent agents to train")
	cmd.Flags().Int("concurrency", d.Experiment.Concurrency, "Number of agents trained at once, 0 for all")
	cmd.Flags().String("returns-file", d.Experiment.ReturnsFile, "Save episodic returns to this file")
	cmd.Flags().String("lengths-file", d.Experiment.LengthsFile, "Save episode lengths to this file")
	cmd.Flags().Bool("progress", d.Experiment.Progress, "Display a progress bar")
	cmd.Flags().Uint64("seed", d.Seed, "Random seed")
}

// bindFlags binds the flags named in keys to their configuration keys
// in v. Flags are bound when their command runs so that commands
// sharing a configuration key do not override each other.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet,
	keys ...map[string]string) error {
	for _, m := range keys {
		for name, key := range m {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("could not bind flag %q: %w", name, err)
			}
		}
	}
	return nil
}
