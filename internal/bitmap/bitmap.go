package bitmap

import (
	"image"
)

// Frame locates the original, untrimmed canvas relative to a buffer.
//
// X and Y are the offset of the original canvas origin from the buffer origin,
// so they are zero for an untrimmed sprite and negative once transparent
// margins have been trimmed away. Width and Height are the original size.
type Frame struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Bitmap is a raw RGBA8 pixel buffer with sprite placement metadata.
//
// Pix holds Width*Height pixels in row-major order, four bytes per pixel
// (R, G, B, A, non-premultiplied).
type Bitmap struct {
	// Name identifies the source image (typically its relative file path).
	Name string

	Width  int
	Height int
	Pix    []uint8

	// Frame is recorded in canonical (unrotated) orientation.
	Frame Frame

	// Size is the original untrimmed size and is preserved by every transform
	// except Downsample, which produces a fresh buffer.
	Size Size

	// Rotation counts clockwise quarter-turns, always in [0, 3].
	Rotation int
}

// New allocates a fully transparent bitmap of the given size.
func New(name string, width, height int) *Bitmap {
	return &Bitmap{
		Name:   name,
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
		Frame:  Frame{Width: width, Height: height},
		Size:   Size{Width: width, Height: height},
	}
}

// FromNRGBA copies a decoded image into a new bitmap.
// The image's stride and bounds offset are honored.
func FromNRGBA(name string, img *image.NRGBA) *Bitmap {
	bounds := img.Bounds()
	b := New(name, bounds.Dx(), bounds.Dy())
	rowLen := b.Width * 4
	for y := 0; y < b.Height; y++ {
		src := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		copy(b.Pix[y*rowLen:(y+1)*rowLen], img.Pix[src:src+rowLen])
	}
	return b
}

// Image returns an *image.NRGBA view sharing the bitmap's pixel storage.
func (b *Bitmap) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// Opaque reports whether every pixel has full alpha.
func (b *Bitmap) Opaque() bool {
	for i := 3; i < len(b.Pix); i += 4 {
		if b.Pix[i] < 0xFF {
			return false
		}
	}
	return true
}

// CanonicalSize returns the buffer dimensions in unrotated orientation.
func (b *Bitmap) CanonicalSize() Size {
	if b.Rotation%2 == 1 {
		return Size{Width: b.Height, Height: b.Width}
	}
	return Size{Width: b.Width, Height: b.Height}
}

// Copy blits a width x height rectangle from source (sx, sy) into target
// (tx, ty). The rectangle is clipped against both buffers, including negative
// origins. Source and target may be the same bitmap as long as the rows or
// columns being copied do not alias each other mid-row.
func Copy(source, target *Bitmap, tx, ty, sx, sy, width, height int) *Bitmap {
	if tx < 0 {
		sx -= tx
		width += tx
		tx = 0
	}
	if ty < 0 {
		sy -= ty
		height += ty
		ty = 0
	}
	if sx < 0 {
		tx -= sx
		width += sx
		sx = 0
	}
	if sy < 0 {
		ty -= sy
		height += sy
		sy = 0
	}
	width = min(width, source.Width-sx, target.Width-tx)
	height = min(height, source.Height-sy, target.Height-ty)
	if width <= 0 || height <= 0 {
		return target
	}

	n := width * 4
	for y := 0; y < height; y++ {
		si := (source.Width*(y+sy) + sx) * 4
		ti := (target.Width*(y+ty) + tx) * 4
		copy(target.Pix[ti:ti+n], source.Pix[si:si+n])
	}
	return target
}

// at returns the byte offset of pixel (x, y).
func (b *Bitmap) at(x, y int) int {
	return (y*b.Width + x) * 4
}
