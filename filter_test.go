package pixlzr

import "testing"

func TestFilterFromTag(t *testing.T) {
	for _, tc := range []struct {
		tag  byte
		want Filter
	}{
		{0, FilterUnset},
		{1, FilterNearest},
		{2, FilterTriangle},
		{3, FilterCatmullRom},
		{4, FilterGaussian},
		{5, FilterLanczos3},
		{6, DefaultFilter},
		{255, DefaultFilter},
	} {
		if got := FilterFromTag(tc.tag); got != tc.want {
			t.Errorf("FilterFromTag(%d) = %s, want %s", tc.tag, got, tc.want)
		}
	}
}

func TestParseFilter(t *testing.T) {
	for f := FilterNearest; f <= FilterLanczos3; f++ {
		got, err := ParseFilter(f.String())
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", f.String(), err)
		}
		if got != f {
			t.Errorf("ParseFilter(%q) = %s", f.String(), got)
		}
		if FilterFromTag(f.Tag()) != f {
			t.Errorf("tag of %s does not round trip", f)
		}
	}

	for in, want := range map[string]Filter{
		"Linear":     FilterTriangle,
		" lanczos ":  FilterLanczos3,
		"catmullrom": FilterCatmullRom,
		"NEAREST":    FilterNearest,
	} {
		got, err := ParseFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q) = %s, %v; want %s", in, got, err, want)
		}
	}

	if _, err := ParseFilter("bicubic-ish"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}

func TestFilterOrDefault(t *testing.T) {
	if got := FilterUnset.orDefault(); got != DefaultFilter {
		t.Fatalf("unset resolves to %s", got)
	}
	if got := FilterGaussian.orDefault(); got != FilterGaussian {
		t.Fatalf("gaussian resolves to %s", got)
	}
	if FilterUnset.String() != "unset" {
		t.Fatalf("FilterUnset.String() = %q", FilterUnset.String())
	}
}
