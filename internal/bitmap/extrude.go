package bitmap

// Extrude bleeds the border pixels of a placed sprite into the padding gutter
// around it so filtered sampling at atlas seams does not pick up neighbors.
//
// The sprite occupies (x, y, width, height) on canvas. Each side that was not
// trimmed (trimmed[side] is false) has its outermost row or column replicated
// outward by padding/2 pixels; trimmed sides already border transparency in
// the original image and are left alone. Corners are filled when both adjacent
// sides are extruded. Writes are clipped to the canvas. No-op when padding < 2.
func Extrude(canvas *Bitmap, padding, x, y, width, height int, trimmed Edges) *Bitmap {
	offset := padding / 2
	if offset == 0 || width <= 0 || height <= 0 {
		return canvas
	}

	x0, x1 := x, x+width
	if !trimmed[EdgeLeft] {
		for c := 1; c <= offset; c++ {
			Copy(canvas, canvas, x-c, y, x, y, 1, height)
		}
		x0 = x - offset
	}
	if !trimmed[EdgeRight] {
		edge := x + width - 1
		for c := 1; c <= offset; c++ {
			Copy(canvas, canvas, edge+c, y, edge, y, 1, height)
		}
		x1 = x + width + offset
	}
	x0 = max(0, x0)
	x1 = min(canvas.Width, x1)

	if !trimmed[EdgeTop] {
		for r := 1; r <= offset; r++ {
			Copy(canvas, canvas, x0, y-r, x0, y, x1-x0, 1)
		}
	}
	if !trimmed[EdgeBottom] {
		edge := y + height - 1
		for r := 1; r <= offset; r++ {
			Copy(canvas, canvas, x0, edge+r, x0, edge, x1-x0, 1)
		}
	}
	return canvas
}
