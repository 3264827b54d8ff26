package main

import (
	"math"
	"strconv"
	"strings"
)

const defaultShrinkFactor float32 = 1

// parseShrinkFactor reads "[+|-][1/]number". An unparsable number falls
// back to 1 with the sign and inversion still applied. A non-finite result
// such as "nan" or "1/0" falls back to 1 with the sign.
func parseShrinkFactor(s string) float32 {
	s = strings.TrimSpace(s)
	sign := float32(1)
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	}
	invert := false
	if strings.HasPrefix(s, "1/") {
		invert = true
		s = s[2:]
	}

	factor := defaultShrinkFactor
	if v, err := strconv.ParseFloat(s, 32); err == nil {
		factor = float32(v)
	}
	if invert {
		factor = 1 / factor
	}
	if f := float64(factor); math.IsNaN(f) || math.IsInf(f, 0) {
		factor = defaultShrinkFactor
	}
	return sign * factor
}
