package pixlzr

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"
)

const (
	magic      = "PIXLZR"
	blockMagic = "block"

	// minBlockRecord is magic, value, length and the QOI header.
	minBlockRecord = len(blockMagic) + 4 + 4 + qoiHeaderSize
)

// Encoder writes containers in a chosen format version. Fields the version
// does not know about are omitted.
type Encoder struct {
	Version Semver
}

// NewEncoder returns an Encoder for CurrentVersion.
func NewEncoder() Encoder {
	return Encoder{Version: CurrentVersion}
}

// Encode serializes p with the current format version.
func Encode(p *Pixlzr) ([]byte, error) {
	return NewEncoder().Encode(p)
}

// EncodeTo writes the current-version encoding of p to w.
func EncodeTo(w io.Writer, p *Pixlzr) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Encode serializes p. Lines are encoded concurrently and joined in order.
func (e Encoder) Encode(p *Pixlzr) ([]byte, error) {
	if e.Version.Compare(CurrentVersion) > 0 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "cannot write %s", e.Version)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cols, rows := p.GridDimensions()
	lines := make([][]byte, rows)
	err := parallelFor(rows, func(row int) error {
		w := newByteWriter(0)
		for col := 0; col < cols; col++ {
			if err := writeBlock(w, p.Blocks[row*cols+col]); err != nil {
				return errors.Wrapf(err, "block %d,%d", col, row)
			}
		}
		lines[row] = w.Bytes()
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, l := range lines {
		total += len(l)
	}
	w := newByteWriter(len(magic) + 3 + 1 + 16 + 4*rows + total)
	w.Write([]byte(magic))
	w.Write(e.Version.Bytes())
	if e.Version.Has(FeatureFilter) {
		w.WriteByte(p.Filter.Tag())
	}
	w.writeUint32(p.Width)
	w.writeUint32(p.Height)
	w.writeUint32(p.BlockWidth)
	w.writeUint32(p.BlockHeight)
	if e.Version.Has(FeatureLineSizes) {
		for i, l := range lines {
			if uint64(len(l)) > math.MaxUint32 {
				return nil, errors.Wrapf(ErrLineSize, "line %d is %d bytes", i, len(l))
			}
			w.writeUint32(uint32(len(l)))
		}
	}
	for _, l := range lines {
		w.Write(l)
	}
	return w.Bytes(), nil
}

// writeBlock appends one block record. A block without a value is written
// with a NaN value.
func writeBlock(w *byteWriter, b Block) error {
	payload, err := encodePayload(b)
	if err != nil {
		return err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return errors.Wrapf(ErrPixelCodec, "payload of %d bytes", len(payload))
	}
	value, ok := b.BlockValue()
	if !ok {
		value = float32(math.NaN())
	}
	w.Write([]byte(blockMagic))
	w.writeFloat32(value)
	w.writeUint32(uint32(len(payload)))
	w.Write(payload)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Pixlzr) MarshalBinary() ([]byte, error) {
	return Encode(p)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *Pixlzr) UnmarshalBinary(data []byte) error {
	d, err := Decode(data)
	if err != nil {
		return err
	}
	*p = *d
	return nil
}

// DecodeFrom reads r to the end and decodes the container.
func DecodeFrom(r io.Reader) (*Pixlzr, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.WithStack(err)
	}
	return Decode(buf.Bytes())
}

// Decode parses a container of any version up to CurrentVersion. Decoding
// is all or nothing. With a line table, lines are decoded concurrently and
// each must consume exactly its declared length.
func Decode(data []byte) (*Pixlzr, error) {
	r := newByteReader(data)
	if err := r.expect(magic, ErrInvalidMagic); err != nil {
		return nil, err
	}
	vb, err := r.read(3)
	if err != nil {
		return nil, err
	}
	version := SemverFromBytes(vb)
	if version.Compare(CurrentVersion) > 0 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %s, newest known %s", version, CurrentVersion)
	}

	p := &Pixlzr{}
	if version.Has(FeatureFilter) {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		p.Filter = FilterFromTag(tag)
	}
	for _, dst := range []*uint32{&p.Width, &p.Height, &p.BlockWidth, &p.BlockHeight} {
		if *dst, err = r.readUint32(); err != nil {
			return nil, err
		}
	}
	if p.BlockWidth == 0 || p.BlockHeight == 0 {
		return nil, errors.Wrapf(ErrInvalidHeader, "block size %dx%d", p.BlockWidth, p.BlockHeight)
	}

	cols := (uint64(p.Width) + uint64(p.BlockWidth) - 1) / uint64(p.BlockWidth)
	rows := (uint64(p.Height) + uint64(p.BlockHeight) - 1) / uint64(p.BlockHeight)
	if cols*rows > uint64(r.Len()/minBlockRecord) {
		return nil, errors.Wrapf(ErrShortBuffer, "%dx%d grid does not fit %d bytes", cols, rows, r.Len())
	}
	p.Blocks = make([]Block, cols*rows)

	if !version.Has(FeatureLineSizes) {
		for i := range p.Blocks {
			if p.Blocks[i], err = readBlock(r); err != nil {
				return nil, errors.Wrapf(err, "block %d", i)
			}
		}
		if r.Len() != 0 {
			return nil, errors.Wrapf(ErrTrailingData, "%d bytes", r.Len())
		}
		return p, nil
	}

	lines, err := readLineTable(r, int(rows))
	if err != nil {
		return nil, err
	}
	nc := int(cols)
	err = parallelFor(len(lines), func(row int) error {
		lr := newByteReader(lines[row])
		for col := 0; col < nc; col++ {
			b, err := readBlock(lr)
			if err != nil {
				return errors.Wrapf(err, "block %d,%d", col, row)
			}
			p.Blocks[row*nc+col] = b
		}
		if lr.Len() != 0 {
			return errors.Wrapf(ErrLineSize, "line %d has %d unread bytes", row, lr.Len())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// readLineTable reads one length per line and slices the remaining data
// accordingly. The lengths must cover the rest of the buffer exactly.
func readLineTable(r *byteReader, rows int) ([][]byte, error) {
	if uint64(rows)*4 > uint64(r.Len()) {
		return nil, errors.Wrapf(ErrShortBuffer, "line table of %d entries, %d bytes remain", rows, r.Len())
	}
	sizes := make([]uint32, rows)
	var sum uint64
	for i := range sizes {
		n, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		sizes[i] = n
		sum += uint64(n)
	}
	if sum != uint64(r.Len()) {
		return nil, errors.Wrapf(ErrLineSize, "lines sum to %d bytes, %d remain", sum, r.Len())
	}

	lines := make([][]byte, rows)
	for i, n := range sizes {
		b, err := r.read(int(n))
		if err != nil {
			return nil, err
		}
		lines[i] = b
	}
	return lines, nil
}

func readBlock(r *byteReader) (Block, error) {
	if err := r.expect(blockMagic, ErrInvalidBlockMagic); err != nil {
		return nil, err
	}
	value, err := r.readFloat32()
	if err != nil {
		return nil, err
	}
	n, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	payload, err := r.read(int(n))
	if err != nil {
		return nil, err
	}
	b, err := decodePayload(payload)
	if err != nil {
		return nil, err
	}
	if !math.IsNaN(float64(value)) {
		b.Value, b.Valued = value, true
	}
	return b, nil
}
