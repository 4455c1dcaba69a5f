package bitmap

import "github.com/disintegration/imaging"

// Rotate returns source turned a quarter-turn clockwise, or counter-clockwise
// when ccw is set. Width and height swap; Size and Frame are carried over
// untouched (Frame stays canonical) and Rotation advances by 1 (cw) or 3 (ccw).
//
// Output pixel (x, y) comes from source (y, H-1-x) clockwise and from
// (W-1-y, x) counter-clockwise, where W x H is the source size.
func Rotate(source *Bitmap, ccw bool) *Bitmap {
	var target *Bitmap
	if ccw {
		target = FromNRGBA(source.Name, imaging.Rotate90(source.Image()))
		target.Rotation = (source.Rotation + 3) % 4
	} else {
		target = FromNRGBA(source.Name, imaging.Rotate270(source.Image()))
		target.Rotation = (source.Rotation + 1) % 4
	}
	target.Size = source.Size
	target.Frame = source.Frame
	return target
}
