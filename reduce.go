package pixlzr

import "math"

// parseValue maps negative variances to max(0, 1+v): a negative factor
// keeps a 1+v fraction of detail. NaN keeps the block at full size, so a
// stored block value is never NaN.
func parseValue(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)):
		return 1
	case !math.Signbit(float64(v)):
		return v
	}
	return float32(math.Max(0, float64(1+v)))
}

// reductionLevel rounds v to a power-of-two scale, never above 1.
// Zero maps to 0, which the caller clamps to a single pixel.
func reductionLevel(v float32) float64 {
	level := math.Exp2(math.Min(math.Round(math.Log2(float64(v))), 0))
	if math.IsNaN(level) {
		return 1
	}
	return level
}

func reducedSize(size uint32, level float64) uint32 {
	return uint32(math.Ceil(math.Max(1, float64(size)*level)))
}

// Reduce shrinks b by whole octaves per axis according to the variance
// pair (hz, vr) and records hypot(hz, vr) as its block value. Blocks that
// already carry a value are returned unchanged.
func Reduce(b Block, hz, vr float32, f Filter) Block {
	if _, ok := b.BlockValue(); ok {
		return b
	}
	hz, vr = parseValue(hz), parseValue(vr)
	w := reducedSize(b.Width(), reductionLevel(hz))
	h := reducedSize(b.Height(), reductionLevel(vr))

	value := float32(math.Hypot(float64(hz), float64(vr)))
	return b.Resize(w, h, f).WithValue(value)
}
