// Package config loads the configuration of a training run from
// defaults, a YAML file, environment variables and command line flags
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/wormrl/agent/tabular/qlearning"
	"github.com/samuelfneumann/wormrl/environment/action"
	"github.com/samuelfneumann/wormrl/environment/worm"
	"github.com/samuelfneumann/wormrl/experiment"
	"github.com/samuelfneumann/wormrl/experiment/tracker"
)

// EnvPrefix prefixes the environment variables read into a Config
const EnvPrefix = "WORMRL"

// FileKey is the key holding the path of the configuration file
const FileKey = "config"

// Config is the configuration of a training run
type Config struct {
	Agent      qlearning.Config  `mapstructure:"agent"`
	Env        worm.Config       `mapstructure:"env"`
	Experiment experiment.Config `mapstructure:"experiment"`
	Seed       uint64            `mapstructure:"seed"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Agent:      qlearning.DefaultConfig(),
		Env:        worm.DefaultConfig(),
		Experiment: experiment.DefaultConfig(),
	}
}

// SetDefaults registers the default configuration with v
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("agent.buckets", d.Agent.Buckets)
	v.SetDefault("agent.learning_rate", d.Agent.LearningRate)
	v.SetDefault("agent.min_learning_rate", d.Agent.MinLearningRate)
	v.SetDefault("agent.discount", d.Agent.Discount)
	v.SetDefault("agent.epsilon", d.Agent.Epsilon)
	v.SetDefault("agent.min_epsilon", d.Agent.MinEpsilon)
	v.SetDefault("agent.decay", d.Agent.Decay)
	v.SetDefault("agent.algorithm", string(d.Agent.Algorithm))

	v.SetDefault("env.step_delay", d.Env.StepDelay)
	v.SetDefault("env.max_steps", d.Env.MaxSteps)
	v.SetDefault("env.cooldown_window", d.Env.CooldownWindow)
	v.SetDefault("env.hunger_threshold", d.Env.HungerThreshold)

	v.SetDefault("experiment.episodes", d.Experiment.Episodes)
	v.SetDefault("experiment.eval_episodes", d.Experiment.EvalEpisodes)
	v.SetDefault("experiment.max_episode_steps", d.Experiment.MaxEpisodeSteps)
	v.SetDefault("experiment.agents", d.Experiment.Agents)
	v.SetDefault("experiment.concurrency", d.Experiment.Concurrency)
	v.SetDefault("experiment.returns_file", d.Experiment.ReturnsFile)
	v.SetDefault("experiment.lengths_file", d.Experiment.LengthsFile)
	v.SetDefault("experiment.progress", d.Experiment.Progress)

	v.SetDefault("seed", d.Seed)
}

// Load loads a Config from v. Values are taken, from highest to lowest
// priority, from flags bound to v, WORMRL_ environment variables, the
// YAML file named by the "config" key and the defaults.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	if file := v.GetString(FileKey); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("load: could not read config "+
				"file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	return c, nil
}

// Validate ensures that the Config is valid, reporting every invalid
// section
func (c Config) Validate() error {
	var result *multierror.Error
	if err := c.Agent.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("agent: %w", err))
	}
	if err := c.Env.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("env: %w", err))
	}
	if err := c.Experiment.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("experiment: %w", err))
	}
	if len(c.Agent.Buckets) != worm.ObservationDims {
		result = multierror.Append(result, fmt.Errorf("agent: have %d "+
			"bucket counts for %d observation dimensions",
			len(c.Agent.Buckets), worm.ObservationDims))
	}
	return result.ErrorOrNil()
}

// CreateExperiment creates the i-th environment and agent pair of the
// Config and the experiment training the agent. Each pair is seeded
// with Seed + i.
func (c Config) CreateExperiment(i int, sensor worm.Sensor,
	executor action.Executor,
	logger logrus.FieldLogger) (*experiment.Episodic, error) {
	seed := c.Seed + uint64(i)
	logger = logger.WithField("agent", i)

	env, err := worm.New(c.Env, sensor, executor, nil, logger, seed)
	if err != nil {
		return nil, fmt.Errorf("createExperiment: could not create "+
			"environment: %w", err)
	}

	agent, err := c.Agent.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExperiment: could not create "+
			"agent: %w", err)
	}

	n := c.Experiment.Agents
	returns := tracker.NewReturn(IndexedFile(c.Experiment.ReturnsFile, i, n))
	lengths := tracker.NewEpisodeLength(IndexedFile(c.Experiment.LengthsFile,
		i, n))

	exp := experiment.NewEpisodic(env, agent, c.Experiment.Episodes,
		c.Experiment.MaxEpisodeSteps, logger, returns, lengths)
	exp.SetEvaluation(c.Experiment.EvalEpisodes)
	return exp, nil
}

// IndexedFile returns the file the i-th of n agents saves data to. With
// a single agent the name is returned unchanged; otherwise the index
// is inserted before the extension.
func IndexedFile(name string, i, n int) string {
	if name == "" || n <= 1 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), i, ext)
}
