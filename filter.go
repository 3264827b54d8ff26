package pixlzr

import (
	"strings"

	"github.com/pkg/errors"
)

// Filter selects the resampling kernel. The zero value means "unset" and is
// only meaningful as the container's filter tag.
type Filter uint8

const (
	FilterUnset Filter = iota
	FilterNearest
	FilterTriangle
	FilterCatmullRom
	FilterGaussian
	FilterLanczos3
)

const (
	// DefaultFilter is used for unknown filter tags.
	DefaultFilter = FilterNearest
	// DefaultExpandFilter expands containers that carry no filter tag.
	DefaultExpandFilter = FilterGaussian
)

var filterNames = map[Filter]string{
	FilterNearest:    "nearest",
	FilterTriangle:   "triangle",
	FilterCatmullRom: "catmull-rom",
	FilterGaussian:   "gaussian",
	FilterLanczos3:   "lanczos3",
}

// FilterFromTag maps a container filter byte to a Filter.
// 0 is unset; values past the known range fall back to DefaultFilter.
func FilterFromTag(tag byte) Filter {
	f := Filter(tag)
	if f == FilterUnset || f.Valid() {
		return f
	}
	return DefaultFilter
}

// Tag returns the container byte for f.
func (f Filter) Tag() byte {
	return byte(f)
}

// Valid reports whether f names a resampling kernel.
func (f Filter) Valid() bool {
	return f >= FilterNearest && f <= FilterLanczos3
}

// orDefault resolves FilterUnset (or garbage) to a usable kernel.
func (f Filter) orDefault() Filter {
	if f.Valid() {
		return f
	}
	return DefaultFilter
}

func (f Filter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return "unset"
}

// ParseFilter parses a filter name as printed by Filter.String.
// "linear" and "catmullrom" are accepted as aliases.
func ParseFilter(s string) (Filter, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "linear", "bilinear":
		return FilterTriangle, nil
	case "catmullrom", "cubic":
		return FilterCatmullRom, nil
	case "lanczos":
		return FilterLanczos3, nil
	}
	for f, n := range filterNames {
		if n == name {
			return f, nil
		}
	}
	return FilterUnset, errors.Errorf("unknown filter %q", s)
}
