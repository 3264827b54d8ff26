package pixlzr

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// Config gathers the knobs of a split, shrink and expand run.
type Config struct {
	BlockWidth  uint32
	BlockHeight uint32

	// Filter shrinks blocks. ExpandFilter rebuilds the image; FilterUnset
	// means Filter.
	Filter       Filter
	ExpandFilter Filter

	// Factor scales the variance before the reduction level is derived.
	// Negative factors keep a 1+Factor fraction of detail.
	Factor float32
	// Directional selects the Sobel estimator, shrinking each axis on its own.
	Directional bool

	Backend      Backend
	Multiplicity uint8
}

// DefaultConfig returns the defaults of the command line tool.
func DefaultConfig() Config {
	return Config{
		BlockWidth:   64,
		BlockHeight:  64,
		Filter:       FilterLanczos3,
		Factor:       1,
		Backend:      BackendConvolution,
		Multiplicity: DefaultMultiplicity,
	}
}

// Validate rejects configurations no run can use.
func (c Config) Validate() error {
	if c.BlockWidth == 0 || c.BlockHeight == 0 {
		return errors.Wrapf(ErrZeroBlockSize, "%dx%d", c.BlockWidth, c.BlockHeight)
	}
	if !c.Filter.Valid() {
		return errors.Errorf("pixlzr: invalid shrink filter %d", c.Filter)
	}
	if f := float64(c.Factor); math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Wrapf(ErrInvalidFactor, "%v", c.Factor)
	}
	return nil
}

// Resizer returns the resizer described by c.
func (c Config) Resizer() Resizer {
	return Resizer{Backend: c.Backend, Multiplicity: c.Multiplicity}
}

// Apply installs c's resizer as the package resizer.
func (c Config) Apply() {
	SetResizer(c.Resizer())
}

func (c Config) expandFilter() Filter {
	if c.ExpandFilter.Valid() {
		return c.ExpandFilter
	}
	return c.Filter
}

// Split builds a container from img with c's block size.
func (c Config) Split(img image.Image) (*Pixlzr, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return New(img, c.BlockWidth, c.BlockHeight)
}

// Shrink reduces p's unprocessed blocks with c's estimator and filter.
func (c Config) Shrink(p *Pixlzr) {
	if c.Directional {
		p.ShrinkDirectionally(c.Filter, c.Factor)
		return
	}
	p.ShrinkBy(c.Filter, c.Factor)
}

// Process splits img, shrinks every block and expands the grid back into
// an image of the same size. The package resizer is used as is.
func Process(img image.Image, c Config) (image.Image, error) {
	p, err := c.Split(img)
	if err != nil {
		return nil, err
	}
	c.Shrink(p)
	return p.ToImage(c.expandFilter()), nil
}
