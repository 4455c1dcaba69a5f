package bitmap

// Edge names one side of a rectangle.
type Edge int

// Sides in clockwise order; rotating a sprite one quarter-turn clockwise moves
// each side to the next one in this order.
const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// Edges holds one flag per side, indexed by Edge.
type Edges [4]bool

// rotateEdge returns the current-orientation side where canonical side s
// appears after the given number of clockwise quarter-turns.
func rotateEdge(s Edge, rotation int) Edge {
	return Edge((int(s) + rotation) % 4)
}

// Trim crops away the transparent margins of source.
//
// A pixel is kept when its alpha exceeds alphaThreshold*255 (alphaThreshold
// in [0,1]). When the tight bounding box already covers the whole buffer the
// source is returned unchanged. Otherwise a new buffer is allocated and its
// Frame is shifted by the removed margins, translated back into canonical
// orientation so trimming an already-rotated sprite stays correct.
//
// A fully transparent source collapses to its top-left pixel.
func Trim(source *Bitmap, alphaThreshold float64) *Bitmap {
	if source.Width == 0 || source.Height == 0 {
		return source
	}
	threshold := uint8(clampUnit(alphaThreshold) * 0xFF)

	left, right := source.Width-1, 0
	top, bottom := source.Height-1, 0
	for y := 0; y < source.Height; y++ {
		row := source.Pix[y*source.Width*4 : (y+1)*source.Width*4]
		for x := 0; x < source.Width; x++ {
			if row[x*4+3] <= threshold {
				continue
			}
			left = min(left, x)
			right = max(right, x)
			top = min(top, y)
			bottom = max(bottom, y)
		}
	}
	left = min(left, right)
	top = min(top, bottom)

	width := right - left + 1
	height := bottom - top + 1
	if width == source.Width && height == source.Height {
		return source
	}

	// Margins removed in current orientation, then mapped to canonical sides.
	var current [4]int
	current[EdgeTop] = top
	current[EdgeRight] = source.Width - 1 - right
	current[EdgeBottom] = source.Height - 1 - bottom
	current[EdgeLeft] = left

	target := New(source.Name, width, height)
	target.Size = source.Size
	target.Rotation = source.Rotation
	target.Frame = Frame{
		X:      source.Frame.X - current[rotateEdge(EdgeLeft, source.Rotation)],
		Y:      source.Frame.Y - current[rotateEdge(EdgeTop, source.Rotation)],
		Width:  source.Frame.Width,
		Height: source.Frame.Height,
	}
	return Copy(source, target, 0, 0, left, top, width, height)
}

// TrimmedEdges reports, in the buffer's current orientation, which sides had
// transparent margin removed relative to the original image.
func (b *Bitmap) TrimmedEdges() Edges {
	canonical := b.CanonicalSize()
	var trimmed [4]bool
	trimmed[EdgeTop] = b.Frame.Y < 0
	trimmed[EdgeLeft] = b.Frame.X < 0
	trimmed[EdgeRight] = b.Frame.X+b.Frame.Width > canonical.Width
	trimmed[EdgeBottom] = b.Frame.Y+b.Frame.Height > canonical.Height

	var out Edges
	for s := EdgeTop; s <= EdgeLeft; s++ {
		out[rotateEdge(s, b.Rotation)] = trimmed[s]
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
