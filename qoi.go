package pixlzr

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"

	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
)

const (
	qoiMagic = "qoif"
	// qoiHeaderSize excludes the magic: width, height, channels, colorspace.
	qoiHeaderSize = 10
	qoiChannels   = 8
	// qoiMaxRun is the longest pixel run a single op byte encodes.
	qoiMaxRun = 62
)

var qoiEndMarker = []byte{0, 0, 0, 0, 0, 0, 0, 1}

// encodePayload QOI-encodes a block and strips the leading magic.
// Opaque blocks go through qoi.Encode; its NRGBA conversion premultiplies,
// so blocks with alpha use writeQOI instead.
func encodePayload(b Block) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(qoiHeaderSize + 4 + len(b.Bytes()))

	if b.HasAlpha() {
		writeQOI(&buf, b.Bytes(), int(b.Width()), int(b.Height()))
	} else if err := qoi.Encode(&buf, b.NRGBA()); err != nil {
		return nil, errors.Wrapf(ErrPixelCodec, "encode %dx%d block: %v", b.Width(), b.Height(), err)
	}

	out := buf.Bytes()
	if len(out) < len(qoiMagic)+qoiHeaderSize || string(out[:len(qoiMagic)]) != qoiMagic {
		return nil, errors.Wrap(ErrPixelCodec, "encoder produced no header")
	}
	out = out[len(qoiMagic):]
	out[qoiChannels] = byte(b.Channels())
	return out, nil
}

// decodePayload restores the magic and decodes a block payload. The channels
// byte decides whether the block keeps its alpha. The payload must close
// with the end marker and its ops must cover every pixel.
func decodePayload(payload []byte) (*RawBlock, error) {
	if len(payload) < qoiHeaderSize+len(qoiEndMarker) {
		return nil, errors.Wrapf(ErrPixelCodec, "payload of %d bytes has no header", len(payload))
	}
	w := binary.BigEndian.Uint32(payload[0:])
	h := binary.BigEndian.Uint32(payload[4:])
	alpha := payload[qoiChannels] == 4

	// Every op byte yields at most qoiMaxRun pixels.
	if w == 0 || h == 0 || uint64(w)*uint64(h) > uint64(len(payload))*qoiMaxRun {
		return nil, errors.Wrapf(ErrPixelCodec, "block of %dx%d does not fit %d bytes", w, h, len(payload))
	}
	body := len(payload) - len(qoiEndMarker)
	if !bytes.Equal(payload[body:], qoiEndMarker) {
		return nil, errors.Wrapf(ErrPixelCodec, "%dx%d block has no end marker", w, h)
	}

	full := make([]byte, 0, len(qoiMagic)+body)
	full = append(full, qoiMagic...)
	full = append(full, payload[:body]...)

	img, err := qoi.Decode(strictReader{bytes.NewReader(full)})
	if err != nil {
		return nil, errors.Wrapf(ErrPixelCodec, "decode %dx%d block: %v", w, h, err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = toNRGBA(img)
	}
	return NewRawBlock(nrgba, alpha), nil
}

// strictReader turns io.EOF into io.ErrUnexpectedEOF. qoi.Decode returns a
// partial image on io.EOF; any other error fails the decode.
type strictReader struct {
	*bytes.Reader
}

func (r strictReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// writeQOI encodes tightly packed RGBA pixels as a QOI stream. It follows
// the reference encoder op for op, without any color conversion.
func writeQOI(buf *bytes.Buffer, pix []byte, w, h int) {
	var hdr [4 + qoiHeaderSize]byte
	copy(hdr[:], qoiMagic)
	binary.BigEndian.PutUint32(hdr[4:], uint32(w))
	binary.BigEndian.PutUint32(hdr[8:], uint32(h))
	hdr[12] = 4
	buf.Write(hdr[:])

	var index [64][4]byte
	prev := [4]byte{0, 0, 0, 255}
	run := 0
	n := w * h

	for i := 0; i < n; i++ {
		var px [4]byte
		copy(px[:], pix[i*4:i*4+4])

		if px == prev {
			run++
			if run == qoiMaxRun || i == n-1 {
				buf.WriteByte(0xc0 | byte(run-1))
				run = 0
			}
			continue
		}
		if run > 0 {
			buf.WriteByte(0xc0 | byte(run-1))
			run = 0
		}

		pos := (px[0]*3 + px[1]*5 + px[2]*7 + px[3]*11) % 64
		switch {
		case index[pos] == px:
			buf.WriteByte(pos)
		case px[3] != prev[3]:
			index[pos] = px
			buf.WriteByte(0xff)
			buf.Write(px[:])
		default:
			index[pos] = px
			vr := int8(px[0] - prev[0])
			vg := int8(px[1] - prev[1])
			vb := int8(px[2] - prev[2])
			vgr, vgb := vr-vg, vb-vg

			switch {
			case vr > -3 && vr < 2 && vg > -3 && vg < 2 && vb > -3 && vb < 2:
				buf.WriteByte(0x40 | byte(vr+2)<<4 | byte(vg+2)<<2 | byte(vb+2))
			case vgr > -9 && vgr < 8 && vg > -33 && vg < 32 && vgb > -9 && vgb < 8:
				buf.WriteByte(0x80 | byte(vg+32))
				buf.WriteByte(byte(vgr+8)<<4 | byte(vgb+8))
			default:
				buf.WriteByte(0xfe)
				buf.Write(px[:3])
			}
		}
		prev = px
	}
	buf.Write(qoiEndMarker)
}
