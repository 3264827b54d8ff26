package pixlzr

import (
	"image"

	"github.com/disintegration/imaging"
)

// Block is one cell of the grid. RawBlock and ImageBlock are the two
// interchangeable storages; conversions between them are lossless.
type Block interface {
	Width() uint32
	Height() uint32
	// BlockValue returns the stored reduction magnitude, if computed.
	BlockValue() (float32, bool)
	HasAlpha() bool
	// Channels is 4 with alpha, 3 without.
	Channels() int
	// Bytes returns tightly packed interleaved RGB or RGBA bytes.
	Bytes() []byte
	// At returns the channels of the pixel at (x, y).
	At(x, y int) []byte
	// NRGBA returns the block as an image anchored at (0, 0).
	NRGBA() *image.NRGBA
	// WithValue returns a copy carrying v as block value.
	WithValue(v float32) Block
	// Resize resamples the block with the package resizer.
	Resize(width, height uint32, f Filter) Block
}

// RawBlock stores pixels as packed bytes.
type RawBlock struct {
	W, H   uint32
	Alpha  bool
	Data   []byte
	Value  float32
	Valued bool
}

var _ Block = (*RawBlock)(nil)

func (b *RawBlock) Width() uint32  { return b.W }
func (b *RawBlock) Height() uint32 { return b.H }
func (b *RawBlock) HasAlpha() bool { return b.Alpha }
func (b *RawBlock) Bytes() []byte  { return b.Data }

func (b *RawBlock) BlockValue() (float32, bool) {
	return b.Value, b.Valued
}

func (b *RawBlock) Channels() int {
	return channels(b.Alpha)
}

func (b *RawBlock) At(x, y int) []byte {
	c := b.Channels()
	off := (y*int(b.W) + x) * c
	return b.Data[off : off+c : off+c]
}

func (b *RawBlock) NRGBA() *image.NRGBA {
	w, h := int(b.W), int(b.H)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if b.Alpha {
		copy(img.Pix, b.Data)
		return img
	}
	for i, j := 0, 0; j < len(b.Data); i, j = i+4, j+3 {
		img.Pix[i+0] = b.Data[j+0]
		img.Pix[i+1] = b.Data[j+1]
		img.Pix[i+2] = b.Data[j+2]
		img.Pix[i+3] = 0xff
	}
	return img
}

func (b *RawBlock) WithValue(v float32) Block {
	c := b.clone()
	c.Value, c.Valued = v, true
	return c
}

func (b *RawBlock) Resize(width, height uint32, f Filter) Block {
	return GetResizer().Resize(b, width, height, f)
}

func (b *RawBlock) clone() *RawBlock {
	c := *b
	c.Data = append([]byte(nil), b.Data...)
	return &c
}

// ImageBlock stores pixels in an *image.NRGBA. Alpha records whether the
// block carries a meaningful alpha channel.
type ImageBlock struct {
	Img    *image.NRGBA
	Alpha  bool
	Value  float32
	Valued bool
}

var _ Block = (*ImageBlock)(nil)

func (b *ImageBlock) Width() uint32  { return uint32(b.Img.Rect.Dx()) }
func (b *ImageBlock) Height() uint32 { return uint32(b.Img.Rect.Dy()) }
func (b *ImageBlock) HasAlpha() bool { return b.Alpha }

func (b *ImageBlock) BlockValue() (float32, bool) {
	return b.Value, b.Valued
}

func (b *ImageBlock) Channels() int {
	return channels(b.Alpha)
}

func (b *ImageBlock) Bytes() []byte {
	return packNRGBA(b.Img, b.Alpha)
}

func (b *ImageBlock) At(x, y int) []byte {
	r := b.Img.Rect
	off := b.Img.PixOffset(r.Min.X+x, r.Min.Y+y)
	c := b.Channels()
	return b.Img.Pix[off : off+c : off+c]
}

func (b *ImageBlock) NRGBA() *image.NRGBA {
	return imaging.Clone(b.Img)
}

func (b *ImageBlock) WithValue(v float32) Block {
	return &ImageBlock{Img: b.Img, Alpha: b.Alpha, Value: v, Valued: true}
}

func (b *ImageBlock) Resize(width, height uint32, f Filter) Block {
	return GetResizer().Resize(b, width, height, f)
}

// ToRaw converts any block to its packed-bytes form.
func ToRaw(b Block) *RawBlock {
	if raw, ok := b.(*RawBlock); ok {
		return raw
	}
	v, ok := b.BlockValue()
	return &RawBlock{
		W:      b.Width(),
		H:      b.Height(),
		Alpha:  b.HasAlpha(),
		Data:   b.Bytes(),
		Value:  v,
		Valued: ok,
	}
}

// ToImage converts any block to its image-backed form.
func ToImage(b Block) *ImageBlock {
	if img, ok := b.(*ImageBlock); ok {
		return img
	}
	v, ok := b.BlockValue()
	return &ImageBlock{
		Img:    b.NRGBA(),
		Alpha:  b.HasAlpha(),
		Value:  v,
		Valued: ok,
	}
}

// NewRawBlock builds an unprocessed block from an image region, keeping
// the alpha channel only when alpha is true.
func NewRawBlock(img *image.NRGBA, alpha bool) *RawBlock {
	r := img.Rect
	return &RawBlock{
		W:     uint32(r.Dx()),
		H:     uint32(r.Dy()),
		Alpha: alpha,
		Data:  packNRGBA(img, alpha),
	}
}

func channels(alpha bool) int {
	if alpha {
		return 4
	}
	return 3
}

// packNRGBA copies img's pixels into a tight RGB or RGBA buffer.
func packNRGBA(img *image.NRGBA, alpha bool) []byte {
	r := img.Rect
	w, h := r.Dx(), r.Dy()
	c := channels(alpha)
	out := make([]byte, w*h*c)
	for y := 0; y < h; y++ {
		src := img.Pix[img.PixOffset(r.Min.X, r.Min.Y+y):]
		dst := out[y*w*c:]
		if alpha {
			copy(dst[:w*4], src[:w*4])
			continue
		}
		for x := 0; x < w; x++ {
			dst[x*3+0] = src[x*4+0]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return out
}
