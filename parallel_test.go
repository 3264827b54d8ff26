package pixlzr

import (
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

func withParallelConfig(t *testing.T, c ParallelConfig) {
	t.Helper()
	prev := GetParallelConfig()
	SetParallelConfig(c)
	t.Cleanup(func() { SetParallelConfig(prev) })
}

func TestParallelForVisitsEachIndexOnce(t *testing.T) {
	for _, c := range []ParallelConfig{
		DefaultParallelConfig(),
		{NumWorkers: 1},
		{NumWorkers: 3, GrainSize: 2},
		{NumWorkers: 64, GrainSize: 0},
	} {
		withParallelConfig(t, c)
		for _, n := range []int{0, 1, 7, 100} {
			counts := make([]int32, n)
			err := parallelFor(n, func(i int) error {
				atomic.AddInt32(&counts[i], 1)
				return nil
			})
			if err != nil {
				t.Fatalf("parallelFor: %v", err)
			}
			for i, c := range counts {
				if c != 1 {
					t.Fatalf("n=%d: index %d visited %d times", n, i, c)
				}
			}
		}
	}
}

func TestParallelForError(t *testing.T) {
	withParallelConfig(t, ParallelConfig{NumWorkers: 4})
	boom := errors.New("boom")
	err := parallelFor(50, func(i int) error {
		if i == 17 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestSerialResultsMatchParallel(t *testing.T) {
	img := makeAlphaImage(90, 61)

	withParallelConfig(t, ParallelConfig{NumWorkers: 1})
	serial, _ := New(img, 16, 16)
	serial.ShrinkBy(FilterLanczos3, 0.7)
	serialData, err := Encode(serial)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	SetParallelConfig(ParallelConfig{NumWorkers: 8})
	par, _ := New(img, 16, 16)
	par.ShrinkBy(FilterLanczos3, 0.7)
	parData, err := Encode(par)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(serialData) != string(parData) {
		t.Fatalf("parallel encoding differs from serial")
	}
}
