package action

import (
	"context"
	"testing"

	"golang.org/x/exp/rand"
)

func TestIndexRoundTrip(t *testing.T) {
	for _, a := range All() {
		if got := FromIndex(a.Index()); got != a {
			t.Errorf("FromIndex(%d) = %v, want %v", a.Index(), got, a)
		}
	}
}

func TestFromIndexOutOfRange(t *testing.T) {
	for _, i := range []int{-1, Count, Count + 10, 1 << 20} {
		if got := FromIndex(i); got != None {
			t.Errorf("FromIndex(%d) = %v, want %v", i, got, None)
		}
		if Valid(i) {
			t.Errorf("Valid(%d) = true, want false", i)
		}
	}
}

func TestReward(t *testing.T) {
	want := map[Action]int{
		None:      0,
		Ping:      1,
		Scan:      2,
		Infect:    3,
		FetchInfo: 4,
	}
	for a, r := range want {
		if got := a.Reward(); got != r {
			t.Errorf("%v.Reward() = %d, want %d", a, got, r)
		}
	}
}

func TestAllOrder(t *testing.T) {
	all := All()
	if len(all) != Count {
		t.Fatalf("len(All()) = %d, want %d", len(all), Count)
	}
	for i, a := range all {
		if a.Index() != i {
			t.Errorf("All()[%d] = %v, want index %d", i, a, i)
		}
	}

	// Each call returns a fresh slice
	all[0] = FetchInfo
	if All()[0] != None {
		t.Error("All() should not share its backing array between calls")
	}
}

func TestSamplerCoversActions(t *testing.T) {
	s := NewSampler(rand.NewSource(42))
	seen := make(map[Action]int)
	for i := 0; i < 1000; i++ {
		a := s.Sample()
		if !Valid(a.Index()) {
			t.Fatalf("sampled invalid action %v", a)
		}
		seen[a]++
	}
	if len(seen) != Count {
		t.Errorf("sampled %d distinct actions, want %d", len(seen), Count)
	}
}

func TestExecutorFunc(t *testing.T) {
	var got Action = -1
	e := ExecutorFunc(func(_ context.Context, a Action) error {
		got = a
		return nil
	})
	if err := e.Execute(context.Background(), Scan); err != nil {
		t.Fatal(err)
	}
	if got != Scan {
		t.Errorf("executor received %v, want %v", got, Scan)
	}
}
