package pixlzr

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// byteWriter appends big-endian values to a growing buffer.
type byteWriter struct {
	buf []byte
}

func newByteWriter(capacity int) *byteWriter {
	return &byteWriter{buf: make([]byte, 0, capacity)}
}

func (w *byteWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *byteWriter) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *byteWriter) writeUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *byteWriter) writeFloat32(v float32) {
	w.writeUint32(math.Float32bits(v))
}

func (w *byteWriter) Bytes() []byte {
	return w.buf
}

func (w *byteWriter) Len() int {
	return len(w.buf)
}

// byteReader reads big-endian values from a slice with bounds checks.
// Slices returned by read alias the underlying data.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

// Len returns the number of unread bytes.
func (r *byteReader) Len() int {
	return len(r.data) - r.pos
}

func (r *byteReader) Pos() int {
	return r.pos
}

func (r *byteReader) read(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, errors.Wrapf(ErrShortBuffer, "need %d bytes at offset %d, have %d", n, r.pos, r.Len())
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) ReadByte() (byte, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) readUint32() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *byteReader) readFloat32() (float32, error) {
	v, err := r.readUint32()
	return math.Float32frombits(v), err
}

// expect consumes len(magic) bytes and fails with sentinel on mismatch.
func (r *byteReader) expect(magic string, sentinel error) error {
	b, err := r.read(len(magic))
	if err != nil {
		return err
	}
	if string(b) != magic {
		return errors.Wrapf(sentinel, "got %q at offset %d", b, r.pos-len(magic))
	}
	return nil
}
