package pixlzr

import (
	"image"
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.BlockWidth != 64 || c.BlockHeight != 64 {
		t.Fatalf("block size %dx%d", c.BlockWidth, c.BlockHeight)
	}
	if c.Filter != FilterLanczos3 || c.Factor != 1 || c.Directional {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.expandFilter() != FilterLanczos3 {
		t.Fatalf("expand filter %s", c.expandFilter())
	}
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	c.BlockHeight = 0
	if err := c.Validate(); !errors.Is(err, ErrZeroBlockSize) {
		t.Fatalf("got %v", err)
	}
	c = DefaultConfig()
	c.Filter = FilterUnset
	if err := c.Validate(); err == nil {
		t.Fatalf("unset filter accepted")
	}
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		c = DefaultConfig()
		c.Factor = float32(f)
		if err := c.Validate(); !errors.Is(err, ErrInvalidFactor) {
			t.Fatalf("factor %v: got %v, want ErrInvalidFactor", f, err)
		}
	}
}

func TestProcess(t *testing.T) {
	for _, directional := range []bool{false, true} {
		c := DefaultConfig()
		c.BlockWidth, c.BlockHeight = 16, 16
		c.Directional = directional
		c.ExpandFilter = FilterNearest

		out, err := Process(makeUniformImage(40, 24, white), c)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if out.Bounds() != image.Rect(0, 0, 40, 24) {
			t.Fatalf("bounds %v", out.Bounds())
		}
		rgba, ok := out.(*image.RGBA)
		if !ok {
			t.Fatalf("got %T", out)
		}
		for i, v := range rgba.Pix {
			if v != 255 {
				t.Fatalf("directional=%t: byte %d = %d, want 255", directional, i, v)
			}
		}
	}
}

func TestConfigShrinkAndResizer(t *testing.T) {
	c := DefaultConfig()
	c.Backend = BackendFast
	c.Multiplicity = 3
	if r := c.Resizer(); r.Backend != BackendFast || r.Multiplicity != 3 {
		t.Fatalf("Resizer() = %+v", r)
	}
	prev := GetResizer()
	c.Apply()
	t.Cleanup(func() { SetResizer(prev) })
	if GetResizer() != c.Resizer() {
		t.Fatalf("Apply did not install the resizer")
	}

	p, err := c.Split(makeTestImage(70, 70))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	c.Shrink(p)
	for i, b := range p.Blocks {
		if _, ok := b.BlockValue(); !ok {
			t.Fatalf("block %d not shrunk", i)
		}
	}
}
