package tracker

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/samuelfneumann/wormrl/timestep"
)

// episode returns the timesteps of an episode with the given rewards
func episode(rewards ...float64) []timestep.TimeStep {
	steps := []timestep.TimeStep{timestep.New(timestep.First, 0, nil, 0)}
	for i, r := range rewards {
		stepType := timestep.Mid
		if i == len(rewards)-1 {
			stepType = timestep.Last
		}
		steps = append(steps, timestep.New(stepType, r, nil, i+1))
	}
	return steps
}

func TestReturn(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")
	r := NewReturn(filename)

	for _, ep := range [][]float64{{1, 2, 3}, {4}, {-1, 0.5}} {
		for _, step := range episode(ep...) {
			r.Track(step)
		}
	}

	want := []float64{6, 4, -0.5}
	if got := r.Data(); !reflect.DeepEqual(got, want) {
		t.Errorf("returns = %v, want %v", got, want)
	}

	if err := r.Save(); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadData(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, want) {
		t.Errorf("loaded returns = %v, want %v", loaded, want)
	}
}

func TestReturnUnfinishedEpisode(t *testing.T) {
	r := NewReturn("")
	steps := episode(1, 2, 3)
	for _, step := range steps[:len(steps)-1] {
		r.Track(step)
	}
	if len(r.Data()) != 0 {
		t.Errorf("unfinished episode should not be tracked, have %v",
			r.Data())
	}
	if err := r.Save(); err != nil {
		t.Errorf("save without file: %v", err)
	}
}

func TestReturnNonSequential(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-sequential timesteps")
		}
	}()

	r := NewReturn("")
	r.Track(timestep.New(timestep.First, 0, nil, 0))
	r.Track(timestep.New(timestep.Mid, 0, nil, 2))
}

func TestEpisodeLength(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lengths.bin")
	e := NewEpisodeLength(filename)

	for _, ep := range [][]float64{{1, 2, 3}, {4}} {
		for _, step := range episode(ep...) {
			e.Track(step)
		}
	}

	want := []int{3, 1}
	if got := e.Data(); !reflect.DeepEqual(got, want) {
		t.Errorf("lengths = %v, want %v", got, want)
	}

	if err := e.Save(); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadLengths(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, want) {
		t.Errorf("loaded lengths = %v, want %v", loaded, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.bin")
	if _, err := LoadData(missing); err == nil {
		t.Error("expected error loading missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(bad, []byte("not gob"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLengths(bad); err == nil {
		t.Error("expected error decoding garbage")
	}
}
