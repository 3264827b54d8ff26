package pixlzr

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
)

func TestPayloadRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name     string
		img      *image.NRGBA
		alpha    bool
		channels byte
	}{
		{"rgb", makeTestImage(33, 17), false, 3},
		{"rgba", makeAlphaImage(33, 17), true, 4},
		{"single_pixel", makeTestImage(1, 1), false, 3},
		{"uniform_run", makeUniformImage(100, 3, white), false, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := NewRawBlock(tc.img, tc.alpha)
			payload, err := encodePayload(b)
			if err != nil {
				t.Fatalf("encodePayload: %v", err)
			}
			if bytes.HasPrefix(payload, []byte(qoiMagic)) {
				t.Fatalf("payload still carries the QOI magic")
			}
			if got := payload[qoiChannels]; got != tc.channels {
				t.Fatalf("channels byte = %d, want %d", got, tc.channels)
			}
			if w := binary.BigEndian.Uint32(payload); w != b.Width() {
				t.Fatalf("payload width %d", w)
			}

			got, err := decodePayload(payload)
			if err != nil {
				t.Fatalf("decodePayload: %v", err)
			}
			if diff := cmp.Diff(b, got); diff != "" {
				t.Fatalf("block mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteQOIMatchesLibrary(t *testing.T) {
	img := makeTestImage(40, 23)
	// Runs and index hits.
	for x := 0; x < 40; x++ {
		copy(img.Pix[img.PixOffset(x, 5):][:4], []byte{9, 9, 9, 255})
	}

	var want bytes.Buffer
	if err := qoi.Encode(&want, img); err != nil {
		t.Fatalf("qoi.Encode: %v", err)
	}
	var got bytes.Buffer
	writeQOI(&got, img.Pix, 40, 23)
	if diff := cmp.Diff(want.Bytes(), got.Bytes()); diff != "" {
		t.Fatalf("stream differs from qoi.Encode (-want +got):\n%s", diff)
	}
}

func TestWriteQOIKeepsStraightAlpha(t *testing.T) {
	img := makeAlphaImage(16, 16)
	var buf bytes.Buffer
	writeQOI(&buf, img.Pix, 16, 16)

	dec, err := qoi.Decode(&buf)
	if err != nil {
		t.Fatalf("qoi.Decode: %v", err)
	}
	got, ok := dec.(*image.NRGBA)
	if !ok {
		t.Fatalf("decoded %T", dec)
	}
	if diff := cmp.Diff(img.Pix, got.Pix); diff != "" {
		t.Fatalf("pixels differ (-want +got):\n%s", diff)
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	valid, err := encodePayload(NewRawBlock(makeTestImage(4, 4), false))
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	huge := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(huge[0:], 1<<20)
	binary.BigEndian.PutUint32(huge[4:], 1<<20)
	zero := append([]byte(nil), valid...)
	binary.BigEndian.PutUint32(zero[0:], 0)

	// A uniform white block is one diff op and one run op.
	uniform, err := encodePayload(NewRawBlock(makeUniformImage(4, 4, white), false))
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	body := len(uniform) - len(qoiEndMarker)
	if body != qoiHeaderSize+2 {
		t.Fatalf("uniform payload has %d op bytes, want 2", body-qoiHeaderSize)
	}
	truncated := append(append([]byte(nil), uniform[:body-1]...), qoiEndMarker...)

	for _, tc := range []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"short_header", valid[:qoiHeaderSize-1]},
		{"zero_width", zero},
		{"absurd_size", huge},
		{"missing_end_marker", uniform[:body]},
		{"truncated_payload", truncated},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodePayload(tc.payload); !errors.Is(err, ErrPixelCodec) {
				t.Fatalf("got %v, want ErrPixelCodec", err)
			}
		})
	}
}

func TestDecodePayloadRejectsEveryCut(t *testing.T) {
	for _, alpha := range []bool{false, true} {
		img := makeTestImage(8, 8)
		if alpha {
			img = makeAlphaImage(8, 8)
		}
		valid, err := encodePayload(NewRawBlock(img, alpha))
		if err != nil {
			t.Fatalf("encodePayload: %v", err)
		}
		for cut := 1; cut <= len(valid)-qoiHeaderSize; cut++ {
			if _, err := decodePayload(valid[:len(valid)-cut]); !errors.Is(err, ErrPixelCodec) {
				t.Fatalf("alpha=%t cut=%d: got %v, want ErrPixelCodec", alpha, cut, err)
			}
		}
	}
}
