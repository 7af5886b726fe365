package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/wormrl/experiment/tracker"
)

// newTestRoot returns a root command with all subcommands, bound to a
// fresh viper instance
func newTestRoot() *cobra.Command {
	v := viper.New()
	root := NewRootCmd(v)
	NewDiscretizeCmd(root, v)
	NewTrainCmd(root, v)
	NewVersionCmd(root, v)
	return root
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newTestRoot()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestDiscretize(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "Midpoint",
			args: []string{"discretize", "50", "50", "5", "5", "0", "750000"},
			want: "[5 5 5 5 5 5]",
		},
		{
			name: "LowerBound",
			args: []string{"discretize", "--", "0", "0", "0", "0", "-10000",
				"0"},
			want: "[0 0 0 0 0 0]",
		},
		{
			name: "Buckets",
			args: []string{"discretize", "--buckets", "3,3,3,3,3,3", "50",
				"50", "5", "5", "0", "750000"},
			want: "[1 1 1 1 1 1]",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := executeCommand(t, test.args...)
			if err != nil {
				t.Fatal(err)
			}
			if strings.TrimSpace(out) != test.want {
				t.Errorf("output = %q, want %q", out, test.want)
			}
		})
	}
}

func TestDiscretizeErrors(t *testing.T) {
	if _, err := executeCommand(t, "discretize", "1", "2"); err == nil {
		t.Error("expected error for too few values")
	}
	if _, err := executeCommand(t, "discretize", "a", "0", "0", "0", "0",
		"0"); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if _, err := executeCommand(t, "discretize", "--buckets", "3,3", "0",
		"0", "0", "0", "0", "0"); err == nil {
		t.Error("expected error for wrong number of bucket counts")
	}
}

func TestTrain(t *testing.T) {
	returns := filepath.Join(t.TempDir(), "returns.bin")
	out, err := executeCommand(t, "train", "--episodes", "3",
		"--step-delay", "0s", "--max-steps", "4", "--returns-file", returns)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "agent 0: 3 episodes") {
		t.Errorf("output = %q, want summary of 3 episodes", out)
	}

	data, err := tracker.LoadData(returns)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Errorf("saved %d returns, want 3", len(data))
	}
}

func TestTrainMultipleAgents(t *testing.T) {
	dir := t.TempDir()
	lengths := filepath.Join(dir, "lengths.bin")
	out, err := executeCommand(t, "train", "--episodes", "2", "--agents", "2",
		"--step-delay", "0s", "--max-steps", "3", "--lengths-file", lengths,
		"--algorithm", "sarsa")
	if err != nil {
		t.Fatal(err)
	}
	for _, agent := range []string{"agent 0", "agent 1"} {
		if !strings.Contains(out, agent) {
			t.Errorf("output = %q, want summary of %s", out, agent)
		}
	}

	for _, file := range []string{"lengths_0.bin", "lengths_1.bin"} {
		data, err := tracker.LoadLengths(filepath.Join(dir, file))
		if err != nil {
			t.Fatal(err)
		}
		if len(data) != 2 || data[0] != 3 {
			t.Errorf("%s: lengths = %v, want [3 3]", file, data)
		}
	}
}

func TestTrainEvaluate(t *testing.T) {
	returns := filepath.Join(t.TempDir(), "returns.bin")
	out, err := executeCommand(t, "train", "--episodes", "3",
		"--eval-episodes", "2", "--step-delay", "0s", "--max-steps", "4",
		"--returns-file", returns)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "agent 0: 2 evaluation episodes") {
		t.Errorf("output = %q, want summary of 2 evaluation episodes", out)
	}

	// Only training episodes are saved
	data, err := tracker.LoadData(returns)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Errorf("saved %d returns, want 3", len(data))
	}
}

func TestTrainStopsOnSIGTERM(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("SIGTERM cannot be sent on windows")
	}

	// Catch SIGTERM so the test binary survives signals sent before
	// training listens for them
	caught := make(chan os.Signal, 1)
	signal.Notify(caught, syscall.SIGTERM)
	defer signal.Stop(caught)

	returns := filepath.Join(t.TempDir(), "returns.bin")
	done := make(chan error, 1)
	go func() {
		_, err := executeCommand(t, "train", "--episodes", "100000",
			"--step-delay", "1ms", "--max-steps", "2", "--returns-file",
			returns)
		done <- err
	}()

	self, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(20 * time.Second)

	for {
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("err = %v, want %v", err, context.Canceled)
			}
			data, err := tracker.LoadData(returns)
			if err != nil {
				t.Fatal(err)
			}
			if len(data) == 0 {
				t.Error("returns of finished episodes were not saved")
			}
			return

		case <-tick.C:
			if err := self.Signal(syscall.SIGTERM); err != nil {
				t.Fatal(err)
			}

		case <-timeout:
			t.Fatal("training did not stop on SIGTERM")
		}
	}
}

func TestTrainInvalidConfig(t *testing.T) {
	if _, err := executeCommand(t, "train", "--discount", "2"); err == nil {
		t.Error("expected error for invalid discount")
	}
	if _, err := executeCommand(t, "train", "--algorithm", "td"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("output = %q, want version %q", out, Version)
	}

	out, err = executeCommand(t, "version", "--long")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "GoVersion") {
		t.Errorf("output = %q, want long version info", out)
	}
}
