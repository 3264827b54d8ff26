// Package pixlzr shrinks images block by block according to local detail
// and stores the resulting grid in the PIXLZR container format.
//
// Flat blocks are downsampled by whole octaves, detailed blocks are kept
// close to full resolution. Each block remembers the magnitude of its
// reduction, and the container records one byte length per grid line so
// lines can be decoded independently.
package pixlzr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Pixlzr is a block grid covering a Width x Height image.
type Pixlzr struct {
	Width       uint32
	Height      uint32
	BlockWidth  uint32
	BlockHeight uint32
	// Filter is the filter last used to expand the grid, FilterUnset before.
	Filter Filter
	// Blocks are stored row-major.
	Blocks []Block
}

// New splits img into blocks of up to blockWidth x blockHeight. Blocks in
// the last column and row are clipped to the image, never padded.
func New(img image.Image, blockWidth, blockHeight uint32) (*Pixlzr, error) {
	if blockWidth == 0 || blockHeight == 0 {
		return nil, errors.WithStack(ErrZeroBlockSize)
	}
	src := toNRGBA(img)
	alpha := !src.Opaque()

	p := &Pixlzr{
		Width:       uint32(src.Rect.Dx()),
		Height:      uint32(src.Rect.Dy()),
		BlockWidth:  blockWidth,
		BlockHeight: blockHeight,
	}
	cols, rows := p.GridDimensions()
	p.Blocks = make([]Block, cols*rows)

	// Lines are independent and write disjoint slots.
	_ = parallelFor(rows, func(row int) error {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			cell := src.SubImage(p.BlockRect(i)).(*image.NRGBA)
			p.Blocks[i] = NewRawBlock(cell, alpha)
		}
		return nil
	})
	return p, nil
}

// toNRGBA returns img as an *image.NRGBA anchored at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Dimensions returns the image size.
func (p *Pixlzr) Dimensions() (uint32, uint32) {
	return p.Width, p.Height
}

// BlockDimensions returns the nominal block size.
func (p *Pixlzr) BlockDimensions() (uint32, uint32) {
	return p.BlockWidth, p.BlockHeight
}

// GridDimensions returns the number of block columns and rows.
func (p *Pixlzr) GridDimensions() (cols, rows int) {
	return gridDimensions(p.Width, p.Height, p.BlockWidth, p.BlockHeight)
}

func gridDimensions(w, h, bw, bh uint32) (int, int) {
	if bw == 0 || bh == 0 {
		return 0, 0
	}
	cols := (uint64(w) + uint64(bw) - 1) / uint64(bw)
	rows := (uint64(h) + uint64(bh) - 1) / uint64(bh)
	return int(cols), int(rows)
}

// HasTrailing reports whether the last column and row are clipped.
func (p *Pixlzr) HasTrailing() (bool, bool) {
	return p.Width%p.BlockWidth > 0, p.Height%p.BlockHeight > 0
}

// CellSize returns the expected size of the block at grid (col, row).
func (p *Pixlzr) CellSize(col, row int) (uint32, uint32) {
	r := p.cellRect(col, row)
	return uint32(r.Dx()), uint32(r.Dy())
}

// BlockRect returns the image rectangle covered by block i.
func (p *Pixlzr) BlockRect(i int) image.Rectangle {
	cols, _ := p.GridDimensions()
	return p.cellRect(i%cols, i/cols)
}

func (p *Pixlzr) cellRect(col, row int) image.Rectangle {
	x0 := col * int(p.BlockWidth)
	y0 := row * int(p.BlockHeight)
	x1 := min(x0+int(p.BlockWidth), int(p.Width))
	y1 := min(y0+int(p.BlockHeight), int(p.Height))
	return image.Rect(x0, y0, x1, y1)
}

// Line returns the blocks of grid row i.
func (p *Pixlzr) Line(i int) []Block {
	cols, _ := p.GridDimensions()
	return p.Blocks[i*cols : (i+1)*cols : (i+1)*cols]
}

// Lines returns the grid rows in order.
func (p *Pixlzr) Lines() [][]Block {
	_, rows := p.GridDimensions()
	lines := make([][]Block, rows)
	for i := range lines {
		lines[i] = p.Line(i)
	}
	return lines
}

// Validate checks the block count against the grid.
func (p *Pixlzr) Validate() error {
	if p.BlockWidth == 0 || p.BlockHeight == 0 {
		return errors.WithStack(ErrZeroBlockSize)
	}
	cols, rows := p.GridDimensions()
	if len(p.Blocks) != cols*rows {
		return errors.Wrapf(ErrGridMismatch, "have %d blocks, want %dx%d", len(p.Blocks), cols, rows)
	}
	return nil
}

// Clone returns a copy sharing no block storage with p.
func (p *Pixlzr) Clone() *Pixlzr {
	c := *p
	c.Blocks = make([]Block, len(p.Blocks))
	for i, b := range p.Blocks {
		c.Blocks[i] = cloneBlock(b)
	}
	return &c
}

// mapBlocks replaces every block with fn(i, block), one line per task.
func (p *Pixlzr) mapBlocks(fn func(i int, b Block) Block) {
	cols, rows := p.GridDimensions()
	out := make([]Block, len(p.Blocks))
	_ = parallelFor(rows, func(row int) error {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			out[i] = fn(i, p.Blocks[i])
		}
		return nil
	})
	p.Blocks = out
}

// Shrink reduces every unprocessed block using the isotropic estimator e.
func (p *Pixlzr) Shrink(f Filter, e Estimator) {
	p.mapBlocks(func(_ int, b Block) Block {
		if _, ok := b.BlockValue(); ok {
			return b
		}
		v := e.Variance(b)
		return Reduce(b, v, v, f)
	})
}

// ShrinkBy is Shrink with the default estimator for factor.
func (p *Pixlzr) ShrinkBy(f Filter, factor float32) {
	p.Shrink(f, NewEstimator(factor))
}

// ShrinkDirectionally reduces every unprocessed block by its directional
// variance scaled by factor, so each axis shrinks on its own.
func (p *Pixlzr) ShrinkDirectionally(f Filter, factor float32) {
	p.mapBlocks(func(_ int, b Block) Block {
		if _, ok := b.BlockValue(); ok {
			return b
		}
		hz, vr := DirectionalVariance(b)
		return Reduce(b, hz*factor, vr*factor, f)
	})
}

// Expand returns a copy whose blocks are resized back to their grid cells
// with f. The returned container records f as its filter.
func (p *Pixlzr) Expand(f Filter) *Pixlzr {
	f = f.orDefault()
	out := *p
	out.Filter = f
	out.Blocks = make([]Block, len(p.Blocks))

	cols, rows := p.GridDimensions()
	_ = parallelFor(rows, func(row int) error {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			w, h := p.CellSize(col, row)
			b := p.Blocks[i].Resize(w, h, f)
			if b.Width() != w || b.Height() != h {
				panic(fmt.Sprintf("pixlzr: block %d expanded to %dx%d, cell is %dx%d", i, b.Width(), b.Height(), w, h))
			}
			out.Blocks[i] = b
		}
		return nil
	})
	return &out
}

// ToImage expands the grid with f and composes it into one image. The
// result is *image.NRGBA if any block has alpha, *image.RGBA otherwise.
func (p *Pixlzr) ToImage(f Filter) image.Image {
	ex := p.Expand(f)
	rect := image.Rect(0, 0, int(p.Width), int(p.Height))

	alpha := false
	for _, b := range ex.Blocks {
		if b.HasAlpha() {
			alpha = true
			break
		}
	}
	// Opaque NRGBA pixels have the same bytes as RGBA ones.
	pix := make([]byte, rect.Dx()*rect.Dy()*4)
	stride := rect.Dx() * 4

	cols, rows := ex.GridDimensions()
	_ = parallelFor(rows, func(row int) error {
		for col := 0; col < cols; col++ {
			i := row*cols + col
			paste(pix, stride, ex.BlockRect(i), ex.Blocks[i].NRGBA())
		}
		return nil
	})

	if alpha {
		return &image.NRGBA{Pix: pix, Stride: stride, Rect: rect}
	}
	return &image.RGBA{Pix: pix, Stride: stride, Rect: rect}
}

func paste(pix []byte, stride int, r image.Rectangle, src *image.NRGBA) {
	n := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		dst := pix[(r.Min.Y+y)*stride+r.Min.X*4:]
		copy(dst[:n], src.Pix[y*src.Stride:y*src.Stride+n])
	}
}

// Image expands with the container's filter, or DefaultExpandFilter when
// none is recorded.
func (p *Pixlzr) Image() image.Image {
	f := p.Filter
	if !f.Valid() {
		f = DefaultExpandFilter
	}
	return p.ToImage(f)
}
