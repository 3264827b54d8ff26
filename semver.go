package pixlzr

import "fmt"

// Semver is the three-byte container version (major, minor, patch).
type Semver struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// CurrentVersion is the version written by Encode.
var CurrentVersion = Semver{0, 0, 2}

// Features gated by the container version.
const (
	FeatureFilter    = "filter"
	FeatureLineSizes = "line-sizes"
)

// featureVersions maps a feature name to the first version carrying it.
var featureVersions = map[string]Semver{
	FeatureFilter:    {0, 0, 1},
	FeatureLineSizes: {0, 0, 2},
}

// SemverFromBytes reads up to three bytes as major, minor, patch.
// Missing components are zero.
func SemverFromBytes(b []byte) Semver {
	var v Semver
	if len(b) > 0 {
		v.Major = b[0]
	}
	if len(b) > 1 {
		v.Minor = b[1]
	}
	if len(b) > 2 {
		v.Patch = b[2]
	}
	return v
}

// Bytes returns the wire form of v.
func (v Semver) Bytes() []byte {
	return []byte{v.Major, v.Minor, v.Patch}
}

// Compare returns -1, 0 or +1 depending on whether v is lower, equal or
// greater than o.
func (v Semver) Compare(o Semver) int {
	switch {
	case v.Major != o.Major:
		return cmpUint8(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpUint8(v.Minor, o.Minor)
	default:
		return cmpUint8(v.Patch, o.Patch)
	}
}

func cmpUint8(a, b uint8) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Has reports whether containers of version v carry the named feature.
// Unknown features are never present.
func (v Semver) Has(feature string) bool {
	min, ok := featureVersions[feature]
	if !ok {
		return false
	}
	return v.Compare(min) >= 0
}

func (v Semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
