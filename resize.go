package pixlzr

import (
	"image"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Backend selects the resampling implementation.
type Backend uint8

const (
	// BackendConvolution resamples with golang.org/x/image/draw kernels.
	BackendConvolution Backend = iota
	// BackendFast resamples with disintegration/imaging: direct
	// convolution when shrinking, supersampling when enlarging.
	BackendFast
)

// DefaultMultiplicity is the supersampling factor of BackendFast upscales.
const DefaultMultiplicity = 2

func (b Backend) String() string {
	if b == BackendFast {
		return "fast"
	}
	return "convolution"
}

// ParseBackend parses a backend name as printed by Backend.String.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "convolution", "conv", "":
		return BackendConvolution, nil
	case "fast", "imaging":
		return BackendFast, nil
	}
	return BackendConvolution, errors.Errorf("unknown backend %q", s)
}

// Resizer resamples blocks. The zero value uses BackendConvolution.
type Resizer struct {
	Backend      Backend
	Multiplicity uint8
}

var (
	resizer   = Resizer{Backend: BackendConvolution, Multiplicity: DefaultMultiplicity}
	resizerMu sync.RWMutex
)

// SetResizer sets the resizer used by Block.Resize and the container
// operations.
func SetResizer(r Resizer) {
	resizerMu.Lock()
	defer resizerMu.Unlock()
	resizer = r
}

// GetResizer returns the current package resizer.
func GetResizer() Resizer {
	resizerMu.RLock()
	defer resizerMu.RUnlock()
	return resizer
}

// Resize resamples b to width x height, keeping b's storage kind and
// block value. Resizing to the current size returns an exact copy.
func (r Resizer) Resize(b Block, width, height uint32, f Filter) Block {
	if width == b.Width() && height == b.Height() {
		return cloneBlock(b)
	}
	dst := r.resizeImage(b.NRGBA(), int(width), int(height), f.orDefault())

	v, ok := b.BlockValue()
	if _, isImage := b.(*ImageBlock); isImage {
		return &ImageBlock{Img: dst, Alpha: b.HasAlpha(), Value: v, Valued: ok}
	}
	raw := NewRawBlock(dst, b.HasAlpha())
	raw.Value, raw.Valued = v, ok
	return raw
}

func (r Resizer) resizeImage(src *image.NRGBA, w, h int, f Filter) *image.NRGBA {
	if r.Backend == BackendFast {
		return r.resizeFast(src, w, h, f)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	drawInterpolator(f).Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}

// resizeFast picks the algorithm family from the filter and the direction:
// nearest is always direct, shrinking is a direct convolution, enlarging
// supersamples to Multiplicity times the target and filters down.
func (r Resizer) resizeFast(src *image.NRGBA, w, h int, f Filter) *image.NRGBA {
	rf := imagingFilter(f)
	upscale := w > src.Rect.Dx() || h > src.Rect.Dy()
	if f == FilterNearest || !upscale {
		return imaging.Resize(src, w, h, rf)
	}
	m := int(r.Multiplicity)
	if m < 1 {
		m = DefaultMultiplicity
	}
	super := imaging.Resize(src, w*m, h*m, imaging.NearestNeighbor)
	return imaging.Resize(super, w, h, rf)
}

func cloneBlock(b Block) Block {
	switch b := b.(type) {
	case *RawBlock:
		return b.clone()
	case *ImageBlock:
		return &ImageBlock{Img: imaging.Clone(b.Img), Alpha: b.Alpha, Value: b.Value, Valued: b.Valued}
	}
	return ToRaw(b).clone()
}

var (
	gaussianKernel = &draw.Kernel{Support: 2, At: gaussian}
	lanczos3Kernel = &draw.Kernel{Support: 3, At: lanczos3}
)

func drawInterpolator(f Filter) draw.Interpolator {
	switch f {
	case FilterTriangle:
		return draw.BiLinear
	case FilterCatmullRom:
		return draw.CatmullRom
	case FilterGaussian:
		return gaussianKernel
	case FilterLanczos3:
		return lanczos3Kernel
	}
	return draw.NearestNeighbor
}

func imagingFilter(f Filter) imaging.ResampleFilter {
	switch f {
	case FilterTriangle:
		return imaging.Linear
	case FilterCatmullRom:
		return imaging.CatmullRom
	case FilterGaussian:
		return imaging.Gaussian
	case FilterLanczos3:
		return imaging.Lanczos
	}
	return imaging.NearestNeighbor
}

// gaussian and lanczos3 match the imaging kernels of the same name.
func gaussian(t float64) float64 {
	t = math.Abs(t)
	if t < 2 {
		return math.Exp(-2 * t * t)
	}
	return 0
}

func lanczos3(t float64) float64 {
	t = math.Abs(t)
	if t < 3 {
		return sinc(t) * sinc(t/3)
	}
	return 0
}

func sinc(t float64) float64 {
	if t == 0 {
		return 1
	}
	t *= math.Pi
	return math.Sin(t) / t
}
