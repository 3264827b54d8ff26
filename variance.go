package pixlzr

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// IsotropicBaseScale multiplies the shrink factor in the default
	// isotropic "after" transform.
	IsotropicBaseScale float32 = 10
	// DirectionalBaseFactor normalizes the directional gradient sums.
	DirectionalBaseFactor = 1 << 12
)

// BeforeFunc is the per-sample distance from the channel mean.
type BeforeFunc func(x, avg float32) float32

// AfterFunc transforms the normalized distance sum into the variance.
type AfterFunc func(v float32) float32

// AbsoluteDeviation is the default BeforeFunc.
func AbsoluteDeviation(x, avg float32) float32 {
	return float32(math.Abs(float64(x - avg)))
}

// SquaredDeviation is an alternative BeforeFunc weighting outliers.
func SquaredDeviation(x, avg float32) float32 {
	d := x - avg
	return d * d
}

// Identity is an AfterFunc that returns its input.
func Identity(v float32) float32 {
	return v
}

// ScaleBy returns the default AfterFunc: v * factor * IsotropicBaseScale.
func ScaleBy(factor float32) AfterFunc {
	return func(v float32) float32 {
		return v * factor * IsotropicBaseScale
	}
}

// Estimator holds the isotropic variance strategies.
type Estimator struct {
	Before BeforeFunc
	After  AfterFunc
}

// NewEstimator returns the default isotropic estimator for factor.
func NewEstimator(factor float32) Estimator {
	return Estimator{Before: AbsoluteDeviation, After: ScaleBy(factor)}
}

// Variance computes the isotropic variance of b in Oklab. Alpha, when
// present, is a fourth channel in [0, 1].
func (e Estimator) Variance(b Block) float32 {
	before, after := e.Before, e.After
	if before == nil {
		before = AbsoluteDeviation
	}
	if after == nil {
		after = Identity
	}

	n := int(b.Width()) * int(b.Height())
	if n == 0 {
		return after(0)
	}
	ch := b.Channels()
	data := b.Bytes()

	samples := make([][4]float32, n)
	var mean [4]float64
	for i := range samples {
		px := data[i*ch : i*ch+ch]
		s := oklab(px)
		samples[i] = s
		for c := 0; c < 4; c++ {
			mean[c] += float64(s[c])
		}
	}
	var avg [4]float32
	for c := range avg {
		avg[c] = float32(mean[c] / float64(n))
	}

	var delta [4]float32
	for _, s := range samples {
		for c := 0; c < 4; c++ {
			delta[c] += before(s[c], avg[c])
		}
	}
	sum := delta[0] + delta[1] + delta[2]
	if ch == 4 {
		sum += delta[3]
	}
	return after(sum / float32(n))
}

// oklab converts an sRGB(A) pixel to (a, b, L, alpha).
func oklab(px []byte) [4]float32 {
	c := colorful.Color{
		R: float64(px[0]) / 255,
		G: float64(px[1]) / 255,
		B: float64(px[2]) / 255,
	}
	l, a, bb := c.OkLab()
	alpha := float32(1)
	if len(px) > 3 {
		alpha = float32(px[3]) / 255
	}
	return [4]float32{float32(a), float32(bb), float32(l), alpha}
}

// DirectionalVariance applies the 3x3 Sobel kernels over the block's
// interior and returns the normalized (horizontal, vertical) response.
// Alpha is ignored. Blocks narrower or shorter than 3 pixels have no
// interior and yield (0, 0).
func DirectionalVariance(b Block) (float32, float32) {
	w, h := int(b.Width()), int(b.Height())
	if w < 3 || h < 3 {
		return 0, 0
	}
	ch := b.Channels()
	data := b.Bytes()
	px := func(x, y, c int) int {
		return int(data[(y*w+x)*ch+c])
	}

	var sumHz, sumVr uint64
	for y := 0; y < h-2; y++ {
		for x := 0; x < w-2; x++ {
			for c := 0; c < 3; c++ {
				hz := -px(x, y, c) - 2*px(x, y+1, c) - px(x, y+2, c) +
					px(x+2, y, c) + 2*px(x+2, y+1, c) + px(x+2, y+2, c)
				vr := -px(x, y, c) - 2*px(x+1, y, c) - px(x+2, y, c) +
					px(x, y+2, c) + 2*px(x+1, y+2, c) + px(x+2, y+2, c)
				sumHz += uint64(absInt(hz))
				sumVr += uint64(absInt(vr))
			}
		}
	}

	factor := float64(w-2) * float64(h-2) * DirectionalBaseFactor
	return float32(float64(sumHz) / factor), float32(float64(sumVr) / factor)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
