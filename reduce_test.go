package pixlzr

import (
	"math"
	"testing"
)

func TestParseValue(t *testing.T) {
	for _, tc := range []struct {
		in, want float32
	}{
		{0.5, 0.5},
		{0, 0},
		{3, 3},
		{-0.25, 0.75},
		{-1, 0},
		{-2, 0},
		{float32(math.Copysign(0, -1)), 1},
		{float32(math.NaN()), 1},
		{float32(math.Inf(-1)), 0},
	} {
		if got := parseValue(tc.in); got != tc.want {
			t.Errorf("parseValue(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestReductionLevel(t *testing.T) {
	for _, tc := range []struct {
		in   float32
		want float64
	}{
		{1, 1},
		{7, 1},
		{0.5, 0.5},
		{0.3, 0.25},
		{0.01, 1.0 / 128},
		{0, 0},
		{float32(math.NaN()), 1},
	} {
		if got := reductionLevel(tc.in); got != tc.want {
			t.Errorf("reductionLevel(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestReducedSize(t *testing.T) {
	for _, tc := range []struct {
		size  uint32
		level float64
		want  uint32
	}{
		{64, 1, 64},
		{64, 0.25, 16},
		{36, 0.25, 9},
		{5, 0.5, 3},
		{64, 0, 1},
		{1, 1.0 / 1024, 1},
	} {
		if got := reducedSize(tc.size, tc.level); got != tc.want {
			t.Errorf("reducedSize(%d, %v) = %d, want %d", tc.size, tc.level, got, tc.want)
		}
	}
}

func TestReduce(t *testing.T) {
	b := NewRawBlock(makeTestImage(64, 64), false)

	got := Reduce(b, 1, 0.25, FilterLanczos3)
	if got.Width() != 64 || got.Height() != 16 {
		t.Fatalf("reduced to %dx%d, want 64x16", got.Width(), got.Height())
	}
	want := float32(math.Hypot(1, 0.25))
	if v, ok := got.BlockValue(); !ok || v != want {
		t.Fatalf("value = %v, %t; want %v", v, ok, want)
	}

	again := Reduce(got, 0, 0, FilterLanczos3)
	if again != got {
		t.Fatalf("reducing a valued block did not pass it through")
	}
}

func TestReduceNaNVarianceKeepsBlock(t *testing.T) {
	b := NewRawBlock(makeTestImage(16, 8), false)
	nan := float32(math.NaN())

	got := Reduce(b, nan, nan, FilterLanczos3)
	if got.Width() != 16 || got.Height() != 8 {
		t.Fatalf("reduced to %dx%d, want 16x8", got.Width(), got.Height())
	}
	v, ok := got.BlockValue()
	if !ok || math.IsNaN(float64(v)) {
		t.Fatalf("value = %v, %t; want a number", v, ok)
	}

	p := &Pixlzr{Width: 16, Height: 8, BlockWidth: 16, BlockHeight: 8, Filter: FilterLanczos3, Blocks: []Block{got}}
	data, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	d, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dv, ok := d.Blocks[0].BlockValue(); !ok || dv != v {
		t.Fatalf("decoded value = %v, %t; want %v, true", dv, ok, v)
	}
}

func TestReduceUniformToSinglePixel(t *testing.T) {
	b := NewRawBlock(makeUniformImage(64, 64, black), false)
	v := NewEstimator(1).Variance(b)
	got := Reduce(b, v, v, FilterLanczos3)
	if got.Width() != 1 || got.Height() != 1 {
		t.Fatalf("reduced to %dx%d, want 1x1", got.Width(), got.Height())
	}
	if value, ok := got.BlockValue(); !ok || value != 0 {
		t.Fatalf("value = %v, %t; want 0", value, ok)
	}
}
