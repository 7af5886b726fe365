package config

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/wormrl/agent/tabular/qlearning"
	"github.com/samuelfneumann/wormrl/environment/action"
	"github.com/samuelfneumann/wormrl/environment/worm"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(viper.New())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(c, Default()) {
		t.Errorf("loaded %+v, want defaults %+v", c, Default())
	}
	if c.Experiment.Episodes != 1000 {
		t.Errorf("episodes = %d, want 1000", c.Experiment.Episodes)
	}
	if !reflect.DeepEqual(c.Agent.Buckets, []int{10, 10, 10, 10, 10, 10}) {
		t.Errorf("buckets = %v", c.Agent.Buckets)
	}
}

func TestLoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
agent:
  buckets: [4, 4, 4, 4, 4, 4]
  discount: 0.9
  algorithm: sarsa
env:
  step_delay: 10ms
  max_steps: 50
experiment:
  episodes: 20
  agents: 2
seed: 42
`
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.Set(FileKey, file)
	c, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(c.Agent.Buckets, []int{4, 4, 4, 4, 4, 4}) {
		t.Errorf("buckets = %v", c.Agent.Buckets)
	}
	if c.Agent.Discount != 0.9 {
		t.Errorf("discount = %v, want 0.9", c.Agent.Discount)
	}
	if c.Agent.Algorithm != qlearning.SARSAAlgorithm {
		t.Errorf("algorithm = %v, want sarsa", c.Agent.Algorithm)
	}
	if c.Agent.LearningRate != 1.0 {
		t.Errorf("learning rate = %v, want default 1.0", c.Agent.LearningRate)
	}
	if c.Env.StepDelay != 10*time.Millisecond {
		t.Errorf("step delay = %v, want 10ms", c.Env.StepDelay)
	}
	if c.Env.MaxSteps != 50 {
		t.Errorf("max steps = %d, want 50", c.Env.MaxSteps)
	}
	if c.Experiment.Episodes != 20 || c.Experiment.Agents != 2 {
		t.Errorf("experiment = %+v", c.Experiment)
	}
	if c.Seed != 42 {
		t.Errorf("seed = %d, want 42", c.Seed)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("WORMRL_EXPERIMENT_EPISODES", "7")

	c, err := Load(viper.New())
	if err != nil {
		t.Fatal(err)
	}
	if c.Experiment.Episodes != 7 {
		t.Errorf("episodes = %d, want 7", c.Experiment.Episodes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	v := viper.New()
	v.Set(FileKey, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(v); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidateAggregates(t *testing.T) {
	c := Default()
	c.Agent.Discount = 2
	c.Experiment.Agents = 0

	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	var merr interface{ WrappedErrors() []error }
	if !errors.As(err, &merr) || len(merr.WrappedErrors()) != 2 {
		t.Errorf("err = %v, want two aggregated errors", err)
	}

	c = Default()
	c.Agent.Buckets = []int{10, 10}
	if err := c.Validate(); err == nil {
		t.Error("expected error for bucket count not matching observations")
	}
}

func TestCreateExperiment(t *testing.T) {
	c := Default()
	c.Env.StepDelay = 0
	c.Env.MaxSteps = 2
	c.Experiment.Episodes = 2
	c.Experiment.EvalEpisodes = 1
	c.Experiment.Agents = 2
	c.Experiment.ReturnsFile = filepath.Join(t.TempDir(), "returns.bin")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	spec := worm.ObservationSpec()
	for i := 0; i < c.Experiment.Agents; i++ {
		exp, err := c.CreateExperiment(i, worm.NewSimulatedSensor(spec,
			uint64(i)), action.NewLogExecutor(logger), logger)
		if err != nil {
			t.Fatal(err)
		}

		summary, err := exp.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(summary.Episodes) != 2 || len(summary.Evaluation) != 1 {
			t.Errorf("agent %d: ran %d training and %d evaluation "+
				"episodes, want 2 and 1", i, len(summary.Episodes),
				len(summary.Evaluation))
		}
	}
}

func TestIndexedFile(t *testing.T) {
	tests := []struct {
		name string
		i, n int
		want string
	}{
		{"returns.bin", 0, 1, "returns.bin"},
		{"returns.bin", 1, 3, "returns_1.bin"},
		{"out/returns", 2, 3, "out/returns_2"},
		{"", 1, 3, ""},
	}

	for _, test := range tests {
		if got := IndexedFile(test.name, test.i, test.n); got != test.want {
			t.Errorf("IndexedFile(%q, %d, %d) = %q, want %q", test.name,
				test.i, test.n, got, test.want)
		}
	}
}
